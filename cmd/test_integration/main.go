// Smoke test for a locally running verification server. Start the server,
// then run this against it; it exercises the verify endpoints end to end
// with a real backend behind them.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	subject := "smoke-subject-" + fmt.Sprintf("%d", time.Now().Unix())
	sourceData := map[string]interface{}{
		"interview_notes": "Participant is a 34-year-old UX designer in Berlin. Works remotely, " +
			"struggles with fragmented feedback tools, wants faster handoff to engineering.",
	}

	// 1. Health
	fmt.Println("1. Checking health...")
	if !sendRequest("GET", "/healthz", nil) {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	// 2. Verify
	fmt.Println("2. Verifying subject...")
	payload := map[string]interface{}{
		"subject":         subject,
		"source_data":     sourceData,
		"candidate_count": 1,
	}
	if !sendRequest("POST", "/verify", payload) {
		fmt.Println("FAILED: Verify")
		os.Exit(1)
	}
	fmt.Println("PASSED: Verify")

	// 3. Self-consistency
	fmt.Println("3. Checking self-consistency...")
	backend := os.Getenv("VERIFY_BACKEND")
	if backend == "" {
		backend = "ollama:llama3"
	}
	scPayload := map[string]interface{}{
		"subject":     subject,
		"source_data": sourceData,
		"backend":     backend,
		"samples":     2,
	}
	if !sendRequest("POST", "/verify/self-consistency", scPayload) {
		fmt.Println("FAILED: Self-consistency")
		os.Exit(1)
	}
	fmt.Println("PASSED: Self-consistency")

	// 4. Batch
	fmt.Println("4. Verifying batch...")
	batchPayload := map[string]interface{}{
		"subjects": []map[string]interface{}{
			{"subject": subject + "-a", "source_data": sourceData},
			{"subject": subject + "-b", "source_data": sourceData},
		},
	}
	if !sendRequest("POST", "/verify/batch", batchPayload) {
		fmt.Println("FAILED: Batch verify")
		os.Exit(1)
	}
	fmt.Println("PASSED: Batch verify")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
