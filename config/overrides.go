package config

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// WithOverrides returns a copy of c with the per-instance "config" object applied.
//
// Keys follow the solver section layout (grasp.alpha, tabu.tenure, ...). The flat
// script-style keys alpha, iter, time, tenure and two_opt are accepted too and
// apply to every algorithm that has such a setting; time is in seconds.
func (c *SolverConfig) WithOverrides(raw map[string]any) (*SolverConfig, error) {
	out := *c
	if len(raw) == 0 {
		return &out, nil
	}

	nested := expandFlatOverrides(raw)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(mapKey, fieldName)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config decoder")
	}

	if err := decoder.Decode(nested); err != nil {
		return nil, errors.Wrap(err, "failed to decode instance config")
	}

	out.ApplyDefaults()

	return &out, nil
}

func expandFlatOverrides(raw map[string]any) map[string]any {
	nested := make(map[string]any, len(raw))
	grasp := map[string]any{}
	tabu := map[string]any{}
	nn := map[string]any{}

	for key, value := range raw {
		switch strings.ToLower(key) {
		case "alpha":
			grasp["alpha"] = value
		case "iter", "max_iter", "iterations":
			grasp["maxIterations"] = value
			tabu["maxIterations"] = value
		case "time", "time_limit":
			grasp["timeLimit"] = value
			tabu["timeLimit"] = value
		case "tenure":
			tabu["tenure"] = value
		case "seed":
			grasp["seed"] = value
			tabu["seed"] = value
		case "two_opt", "twoopt":
			nn["twoOpt"] = value
		case "consumption", "consumption_rate":
			nested["consumptionRate"] = value
		default:
			nested[key] = value
		}
	}

	mergeSection(nested, "grasp", grasp)
	mergeSection(nested, "tabu", tabu)
	mergeSection(nested, "nearestNeighbor", nn)

	return nested
}

func mergeSection(nested map[string]any, name string, values map[string]any) {
	if len(values) == 0 {
		return
	}

	// explicit section keys win over flat ones; the caller's map is not modified
	if existing, ok := nested[name].(map[string]any); ok {
		for k, v := range existing {
			values[k] = v
		}
	}

	nested[name] = values
}

// secondsToDurationHook treats bare numbers as seconds when decoding into time.Duration.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}

		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return time.Duration(f * float64(time.Second)), nil
			}

			return data, nil
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(f * float64(time.Second)), nil
			}

			return data, nil
		default:
			return data, nil
		}
	}
}
