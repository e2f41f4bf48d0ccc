package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/synaptica-ai/transfusion-vitals/pkg/charts"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
)

var errBadParam = errors.New("invalid query parameter")

// chartQuery holds the optional chart parameters:
// min, max, selected=a,b, ci, base, delta.
type chartQuery struct {
	window   models.TimeRange
	selected []string
	opts     charts.DisplayOptions

	// hasSelection distinguishes "selected=" (nothing) from an absent parameter.
	hasSelection bool
}

func parseChartQuery(q url.Values, dataRange models.TimeRange) (chartQuery, error) {
	out := chartQuery{window: dataRange, opts: charts.DefaultDisplayOptions()}

	var err error
	if out.window[0], err = floatParam(q, "min", dataRange.Min()); err != nil {
		return out, err
	}
	if out.window[1], err = floatParam(q, "max", dataRange.Max()); err != nil {
		return out, err
	}
	if out.opts.ShowConfidenceInterval, err = boolParam(q, "ci", out.opts.ShowConfidenceInterval); err != nil {
		return out, err
	}
	if out.opts.ShowBaseModel, err = boolParam(q, "base", out.opts.ShowBaseModel); err != nil {
		return out, err
	}
	if out.opts.ShowDeltaPlot, err = boolParam(q, "delta", out.opts.ShowDeltaPlot); err != nil {
		return out, err
	}

	if _, ok := q["selected"]; ok {
		out.hasSelection = true
		for _, v := range strings.Split(q.Get("selected"), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out.selected = append(out.selected, v)
			}
		}
	}
	return out, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadParam, key, raw)
	}
	return v, nil
}

func boolParam(q url.Values, key string, def bool) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errBadParam, key, raw)
	}
	return v, nil
}

func intParam(q url.Values, key string) (int, bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q", errBadParam, key, raw)
	}
	return v, true, nil
}
