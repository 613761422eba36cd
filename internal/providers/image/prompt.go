package image

import "fmt"

// BuildPrompt returns the fixed child-friendly style prompt for one item.
func BuildPrompt(topic, name string) string {
	return fmt.Sprintf(`Create a simple, colorful, child-friendly cartoon illustration of %q for an educational children's app about %q.
The image should be:
- Bright and cheerful colors
- Simple and clear shapes
- Cute and friendly style suitable for ages 4-8
- No text in the image
- White or simple background
- Single subject focused`, name, topic)
}
