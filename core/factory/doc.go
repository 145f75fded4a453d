// Package factory builds pluggable modules, such as the delivery metrics
// sinks, from configuration. A module is a type name plus raw settings; the
// registered factory decodes the settings and returns the implementation.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("eco", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ EmissionFactor float64 `json:"emission_factor"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newEcoSink(c.EmissionFactor)
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "eco", Conf: map[string]any{"emission_factor": "0.35"}})
package factory
