package sqlinline

// Markers prefixed onto statements built at runtime with squirrel.
const (
	MarkerListLessons  = "--sql 9e2d4c61-7b3a-4f08-a5c2-d4e6f8a0b1c3"
	MarkerCountLessons = "--sql 4a6b8c0d-1e2f-4a3b-9c5d-6e7f8a9b0c1d"
)

const QInsertLesson = `--sql c8f1a2b3-4d5e-4f60-8a71-b2c3d4e5f607
insert into lessons (id, title, description, cover_image, items, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::jsonb, now(), now())
returning created_at, updated_at;
`

const QSelectLessonByID = `--sql 5d7e9f01-2a3b-4c4d-8e5f-6a7b8c9d0e1f
select id, title, description, cover_image, items, created_at, updated_at
from lessons
where id = $1::uuid
limit 1;
`

const QDeleteLesson = `--sql e1f2a3b4-c5d6-4e7f-8091-a2b3c4d5e6f7
delete from lessons
where id = $1::uuid;
`
