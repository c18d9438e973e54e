package borsa

import "context"

// AdjustForInflation answers what an amount from startMonth is worth in
// endMonth money, using the consumer price index. Months are "YYYY-MM".
func (c *Client) AdjustForInflation(ctx context.Context, amount float64, startMonth, endMonth string) (*InflationResult, error) {
	return c.cpi.Calculate(ctx, amount, startMonth, endMonth)
}
