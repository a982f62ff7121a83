package view

// PlaceholderImage is shown for vehicles without images
const PlaceholderImage = "https://via.placeholder.com/800x600?text=No+Image+Available"

// Carousel steps through a vehicle's images with wrap-around
type Carousel struct {
	images []string
	index  int
}

// NewCarousel creates a carousel; an empty list shows the placeholder
func NewCarousel(images []string) *Carousel {
	if len(images) == 0 {
		images = []string{PlaceholderImage}
	}
	return &Carousel{images: images}
}

// Current returns the image at the cursor
func (c *Carousel) Current() string { return c.images[c.index] }

// Index returns the zero-based cursor
func (c *Carousel) Index() int { return c.index }

// Len returns the number of images
func (c *Carousel) Len() int { return len(c.images) }

// Next advances, wrapping to the first image
func (c *Carousel) Next() string {
	c.index = (c.index + 1) % len(c.images)
	return c.Current()
}

// Prev steps back, wrapping to the last image
func (c *Carousel) Prev() string {
	c.index = (c.index - 1 + len(c.images)) % len(c.images)
	return c.Current()
}

// Seek moves to i modulo the number of images
func (c *Carousel) Seek(i int) string {
	n := len(c.images)
	c.index = ((i % n) + n) % n
	return c.Current()
}
