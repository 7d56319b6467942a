package server

import (
	"fmt"
	"strconv"
)

func parsePositive(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", v)
	}
	return v, nil
}
