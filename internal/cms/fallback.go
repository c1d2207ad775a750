package cms

import "khojstudio.pk/khoj-web/internal/api"

// FallbackHomepage is the copy the landing page renders when the
// backend has no content configured or cannot be reached.
func FallbackHomepage() api.HomepageContent {
	var c api.HomepageContent
	c.Hero.Image = "/static/img/hero.jpg"
	c.Hero.Subtitle = "The Collection"
	c.Hero.Title = "Discover the Art of White"
	c.Hero.Description = "Minimalist clothing crafted with intention. Every piece tells a story of purity, elegance, and timeless design."
	c.Hero.CTAText = "Explore Collection"
	c.Hero.CTAHref = "/shop"

	c.Lookbook.Image = "/static/img/lookbook.jpg"
	c.Lookbook.Season = "Spring / Summer"
	c.Lookbook.Title = "The Lookbook"
	c.Lookbook.CTAText = "View Lookbook"
	c.Lookbook.CTAHref = "/collections"

	c.Brand.Subtitle = "Our Philosophy"
	c.Brand.Title = "White is not the absence of color."
	c.Brand.Tagline = "It is the presence of every possibility."

	c.BackgroundColor = "#ffffff"
	return c
}
