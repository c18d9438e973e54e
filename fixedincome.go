package borsa

import "context"

// Bonds returns the government bond yield table.
func (c *Client) Bonds(ctx context.Context) ([]Bond, error) {
	return c.fixedIncome.Bonds(ctx)
}

// Bond looks up one bond row by name, case-insensitively.
func (c *Client) Bond(ctx context.Context, name string) (*Bond, error) {
	return c.fixedIncome.Bond(ctx, name)
}

// Eurobonds returns the eurobond table.
func (c *Client) Eurobonds(ctx context.Context) ([]Eurobond, error) {
	return c.fixedIncome.Eurobonds(ctx)
}

// Eurobond looks up one eurobond row by name, case-insensitively.
func (c *Client) Eurobond(ctx context.Context, name string) (*Eurobond, error) {
	return c.fixedIncome.Eurobond(ctx, name)
}
