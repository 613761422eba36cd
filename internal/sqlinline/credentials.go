package sqlinline

const QSelectProviderToken = `--sql 3c1f7e42-9a0d-4b8e-8f25-6a7c1d2e4b90
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertProviderToken = `--sql 71b5d0a3-2e64-4f9c-b1d8-0c3e5f7a9b12
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`

const QDeleteProviderToken = `--sql 2f8c6a14-d3b7-4e95-a0c2-7b9e1d4f6a38
delete from integration_tokens
where provider = $1::text;
`
