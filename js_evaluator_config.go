package settings

import "time"

// JSEvaluatorOption configures the goja evaluator returned by NewJSEvaluator.
type JSEvaluatorOption func(*jsOptions)

type jsOptions struct {
	cache     ProgramCache
	functions *FunctionRegistry
	timeout   time.Duration
}

// JSWithProgramCache shares compiled scripts through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) { o.cache = cache }
}

// JSWithFunctionRegistry exposes a copy of registry to scripts.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		if registry != nil {
			o.functions = registry.Clone()
		}
	}
}

// JSWithTimeout interrupts a script that runs longer than d. Zero disables
// the limit.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(o *jsOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func newJSOptions(opts []JSEvaluatorOption) jsOptions {
	var o jsOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
