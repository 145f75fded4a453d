package metrics

import "github.com/prometheus/client_golang/prometheus"

// register adds c to reg, reusing the collector already registered under the
// same descriptor so sinks can be built more than once per process.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}
