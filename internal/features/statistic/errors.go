package statistic

import "errors"

var (
	ErrStatisticNotFound = errors.New("statistic not found")
)
