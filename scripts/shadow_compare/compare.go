package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Comparison modes.
const (
	modeExact = "exact"
	modeShape = "shape"
)

type target struct {
	Name     string   `yaml:"name"`
	Method   string   `yaml:"method"`
	Path     string   `yaml:"path"`
	Auth     bool     `yaml:"auth"`
	Critical bool     `yaml:"critical"`
	Mode     string   `yaml:"mode"`
	Ignore   []string `yaml:"ignore_fields"`
}

type targetFile struct {
	Targets []target `yaml:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func (c comparison) breaking() bool {
	return c.Target.Critical && (c.Error != nil || !c.StatusMatch || !c.BodyMatch)
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for i := range file.Targets {
		t := &file.Targets[i]
		t.Method = strings.ToUpper(strings.TrimSpace(t.Method))
		if t.Method == "" {
			t.Method = http.MethodGet
		}
		if !strings.HasPrefix(t.Path, "/") {
			t.Path = "/" + t.Path
		}
		if t.Mode == "" {
			t.Mode = modeExact
		}
		if t.Name == "" {
			t.Name = t.Method + " " + t.Path
		}
	}
	return file.Targets, nil
}

type backend struct {
	base  string
	token string
}

type comparer struct {
	client *http.Client
	goAPI  backend
	legacy backend
}

func (c *comparer) compare(ctx context.Context, tgt target) comparison {
	comp := comparison{Target: tgt}
	goStatus, goBody, goDur, err := c.fetch(ctx, c.goAPI, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("go request failed: %w", err)
		return comp
	}
	legacyStatus, legacyBody, legacyDur, err := c.fetch(ctx, c.legacy, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", err)
		return comp
	}
	comp.GoStatus, comp.LegacyStatus = goStatus, legacyStatus
	comp.DurationGo, comp.DurationLegacy = goDur, legacyDur
	comp.StatusMatch = goStatus == legacyStatus
	comp.BodyMatch = bodiesMatch(goBody, legacyBody, tgt)
	return comp
}

func (c *comparer) fetch(ctx context.Context, b backend, tgt target) (int, []byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, tgt.Method, strings.TrimRight(b.base, "/")+tgt.Path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if tgt.Auth && b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesMatch compares two bodies as JSON after dropping ignored top-level
// fields. Shape mode compares key structure and value kinds only.
func bodiesMatch(a, b []byte, tgt target) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if json.Unmarshal(a, &aj) != nil || json.Unmarshal(b, &bj) != nil {
		return false
	}
	aj, bj = drop(aj, tgt.Ignore), drop(bj, tgt.Ignore)
	if tgt.Mode == modeShape {
		return reflect.DeepEqual(shape(aj), shape(bj))
	}
	return reflect.DeepEqual(normalize(aj), normalize(bj))
}

func drop(v interface{}, fields []string) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for _, f := range fields {
		delete(obj, f)
	}
	return obj
}

func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			val[k] = normalize(child)
		}
		return val
	case []interface{}:
		for i, child := range val {
			val[i] = normalize(child)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	}
	return v
}

// shape reduces a value to its structure. Arrays are represented by their
// first element.
func shape(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[k] = shape(child)
		}
		return out
	case []interface{}:
		if len(val) == 0 {
			return []interface{}{}
		}
		return []interface{}{shape(val[0])}
	case nil:
		return "null"
	default:
		return reflect.TypeOf(val).Kind().String()
	}
}

func printReport(w io.Writer, results []comparison) {
	sorted := append([]comparison(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].breaking() && !sorted[j].breaking() })

	fmt.Fprintln(w, "StreetVoice shadow comparison")
	fmt.Fprintln(w, "=============================")
	for _, res := range sorted {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s (%s %s)\n", status, res.Target.Name, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Fprintf(w, "  error: %v\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "  go %d in %s | legacy %d in %s\n", res.GoStatus, res.DurationGo, res.LegacyStatus, res.DurationLegacy)
		fmt.Fprintf(w, "  status match: %t | body match: %t | mode: %s | critical: %t\n",
			res.StatusMatch, res.BodyMatch, res.Target.Mode, res.Target.Critical)
	}
}
