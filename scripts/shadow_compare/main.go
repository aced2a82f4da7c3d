// Command shadow_compare replays read-only API requests against the legacy
// backend and the Go port and reports status and body differences. Volatile
// fields (timestamps, generated IDs) are stripped before comparing bodies.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Name     string `json:"name"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

var defaultTargets = []target{
	{Name: "health", Method: http.MethodGet, Path: "/health", Critical: true},
	{Name: "catalog", Method: http.MethodGet, Path: "/api/courses", Critical: true},
	{Name: "catalog-filtered", Method: http.MethodGet, Path: "/api/courses?category=programming&limit=5"},
	{Name: "unauthorized-me", Method: http.MethodGet, Path: "/api/auth/me", Critical: true},
}

// Fields the two backends are allowed to disagree on.
var volatileFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"timestamp":  true,
	"request_id": true,
}

type result struct {
	target       target
	legacyStatus int
	goStatus     int
	statusMatch  bool
	bodyMatch    bool
	err          error
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		bearer      string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Optional JSON targets file")
	flag.StringVar(&bearer, "token", "", "Bearer token forwarded to both backends")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	breaking := 0

	for _, tgt := range targets {
		res := compare(client, goBase, legacyBase, bearer, tgt)
		if tgt.Critical && (res.err != nil || !res.statusMatch || !res.bodyMatch) {
			breaking++
		}
		results = append(results, res)
	}

	report(results)
	if breaking > 0 {
		fmt.Printf("%d breaking difference(s)\n", breaking)
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultTargets, nil
		}
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return defaultTargets, nil
	}
	return file.Targets, nil
}

func compare(client *http.Client, goBase, legacyBase, bearer string, tgt target) result {
	res := result{target: tgt}

	goStatus, goBody, err := fetch(client, goBase, bearer, tgt)
	if err != nil {
		res.err = fmt.Errorf("go request: %w", err)
		return res
	}
	legacyStatus, legacyBody, err := fetch(client, legacyBase, bearer, tgt)
	if err != nil {
		res.err = fmt.Errorf("legacy request: %w", err)
		return res
	}

	res.goStatus = goStatus
	res.legacyStatus = legacyStatus
	res.statusMatch = goStatus == legacyStatus
	res.bodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, bearer string, tgt target) (int, []byte, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	scrub(&aj)
	scrub(&bj)
	return reflect.DeepEqual(aj, bj)
}

// scrub drops volatile fields and normalizes whole-number floats so the
// comparison tolerates serializer differences between the two stacks.
func scrub(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range val {
			if volatileFields[k] {
				delete(val, k)
				continue
			}
			child := val[k]
			scrub(&child)
			val[k] = child
		}
	case []interface{}:
		for i, child := range val {
			scrub(&child)
			val[i] = child
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(results []result) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.err != nil:
			status = "ERROR"
		case !res.statusMatch || !res.bodyMatch:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s %s\n", status, res.target.Name, res.target.Method, res.target.Path)
		if res.err != nil {
			fmt.Printf("  error: %v\n", res.err)
			continue
		}
		fmt.Printf("  go=%d legacy=%d status_match=%t body_match=%t critical=%t\n",
			res.goStatus, res.legacyStatus, res.statusMatch, res.bodyMatch, res.target.Critical)
	}
}
