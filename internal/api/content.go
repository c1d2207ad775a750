package api

import "context"

// Homepage fetches the CMS-managed landing page content.
func (c *Client) Homepage(ctx context.Context) (HomepageContent, error) {
	var res HomepageContent
	err := c.get(ctx, "/content/homepage", &res)
	return res, err
}

// SubscribeNewsletter records a newsletter signup.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.post(ctx, "/newsletter/subscribe", body, nil)
}
