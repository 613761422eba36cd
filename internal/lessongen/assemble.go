package lessongen

import "lessonserver/internal/domain"

// Assemble merges generated content with index-aligned image URLs. The cover
// image is the first item's image. Missing entries become "".
func Assemble(content *domain.GeneratedContent, images []string) domain.LessonFormData {
	if content == nil {
		return domain.LessonFormData{Items: []domain.Item{}}
	}
	items := make([]domain.Item, len(content.Items))
	for i, item := range content.Items {
		items[i] = domain.Item{Name: item.Name, SpokenText: item.SpokenText}
		if i < len(images) {
			items[i].Image = images[i]
		}
	}
	form := domain.LessonFormData{
		Title:       content.Title,
		Description: content.Description,
		Items:       items,
	}
	if len(items) > 0 {
		form.CoverImage = items[0].Image
	}
	return form
}
