package throttle

import (
	"fmt"
	"time"
)

type BucketConf struct {
	Burst     int           `json:"burst"`     // maximum number of tokens in the bucket
	Increment int           `json:"increment"` // how many tokens to add each period
	Period    time.Duration `json:"-"`         // how often to add Increment
	PeriodStr string        `json:"period"`    // e.g. "1m". parsed into Period by Validate
}

// Validate parses PeriodStr and checks the numbers
func (c *BucketConf) Validate() error {
	if c.PeriodStr != "" {
		d, err := time.ParseDuration(c.PeriodStr)
		if err != nil {
			return fmt.Errorf("throttle period: %w", err)
		}
		c.Period = d
	}
	if c.Burst < 1 || c.Increment < 1 || c.Period <= 0 {
		return fmt.Errorf("throttle: burst, increment and period must be positive (got %d, %d, %v)", c.Burst, c.Increment, c.Period)
	}
	return nil
}
