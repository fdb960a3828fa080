package domain

import (
	"fmt"
	"time"
)

// EndpointProfile names an analysis service deployment.
type EndpointProfile struct {
	Name     string
	Endpoint string
	Timeout  time.Duration
}

func (p EndpointProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.Endpoint)
}
