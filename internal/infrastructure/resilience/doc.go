/*
Package resilience provides per-host circuit breakers for the transport.

# Overview

Repeated connection failures against one host open that host's breaker;
further exchanges fail fast with ErrCircuitOpen until the open timeout
elapses and a trial exchange succeeds. HTTP error statuses are responses,
not failures, and never trip a breaker.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	resp, err := resilience.Do(group.Get(host), func() (*http.Response, error) {
		return client.Do(req)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
