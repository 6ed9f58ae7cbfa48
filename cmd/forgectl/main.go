// Package main implements the forgectl CLI for manual operations
// against the planforged HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the planforged HTTP server
	serverURL string
	// version information
	version = "dev"

	skillLevel     string
	projectType    string
	timeConstraint string
	expectedPhases int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "forgectl",
	Short: "CLI for planforged HTTP server operations",
	Long: `forgectl is a command-line interface for the planforged HTTP server.
It provides commands for validating plan structure, running the full
quality evaluation, and refining a project idea into an approved plan.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8640", "planforged server URL")

	validateCmd.Flags().IntVar(&expectedPhases, "phases", 0, "expected phase count (0 uses the server default)")

	for _, cmd := range []*cobra.Command{evaluateCmd, refineCmd} {
		cmd.Flags().StringVar(&skillLevel, "skill", "intermediate", "skill level (beginner, intermediate, advanced)")
		cmd.Flags().StringVar(&projectType, "type", "medium", "project type (toy, medium, ambitious)")
		cmd.Flags().StringVar(&timeConstraint, "time", "", "time constraint, e.g. \"2 weeks\"")
	}

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(refineCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check planforged server health",
	RunE:  runHealth,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate plan structure from a file or stdin",
	Long: `Validate the structure of a plan document using the planforged server.

Examples:
  # Validate a plan file
  forgectl validate plan.json

  # Validate from stdin
  cat plan.json | forgectl validate -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Run the full quality evaluation on a plan",
	Long: `Run the structural validator and every rubric scorer against a plan
document and print the composed feedback report.

Examples:
  # Evaluate a plan for a beginner toy project
  forgectl evaluate --skill beginner --type toy plan.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

var refineCmd = &cobra.Command{
	Use:   "refine <idea>",
	Short: "Refine a project idea into an approved plan",
	Long: `Ask the server to draft, evaluate, and revise a plan for the given
project idea until it is approved or the iteration budget runs out.

Examples:
  forgectl refine "a CLI habit tracker in Go" --skill beginner --type toy --time "1 week"`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

// profile mirrors the server's evaluation profile fields.
type profile struct {
	SkillLevel     string `json:"skill_level,omitempty"`
	ProjectType    string `json:"project_type,omitempty"`
	TimeConstraint string `json:"time_constraint,omitempty"`
}

func currentProfile() profile {
	return profile{
		SkillLevel:     skillLevel,
		ProjectType:    projectType,
		TimeConstraint: timeConstraint,
	}
}

// readPlan reads the plan document from a file argument or stdin.
func readPlan(args []string) (json.RawMessage, error) {
	var content []byte
	var err error

	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	if len(content) == 0 {
		return nil, fmt.Errorf("no plan content to send")
	}
	return content, nil
}

// postJSON sends a request and decodes the response into out.
func postJSON(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy (%d)", resp.StatusCode)
	}
	fmt.Println("ok")
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	planDoc, err := readPlan(args)
	if err != nil {
		return err
	}

	var result struct {
		Passed  bool   `json:"passed"`
		Summary string `json:"summary"`
		Issues  []struct {
			Severity string `json:"severity"`
			Category string `json:"category"`
			Message  string `json:"message"`
			Location string `json:"location"`
		} `json:"issues"`
	}
	req := map[string]any{"plan": json.RawMessage(planDoc)}
	if expectedPhases > 0 {
		req["expected_phases"] = expectedPhases
	}
	if err := postJSON("/api/v1/validate", req, &result); err != nil {
		return err
	}

	fmt.Println(result.Summary)
	for _, issue := range result.Issues {
		if issue.Location != "" {
			fmt.Printf("  [%s] %s: %s (%s)\n", issue.Severity, issue.Category, issue.Message, issue.Location)
		} else {
			fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Category, issue.Message)
		}
	}
	if !result.Passed {
		os.Exit(1)
	}
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	planDoc, err := readPlan(args)
	if err != nil {
		return err
	}

	var response struct {
		Result struct {
			Approved bool   `json:"approved"`
			Feedback string `json:"feedback"`
		} `json:"result"`
	}
	req := map[string]any{
		"plan":    json.RawMessage(planDoc),
		"profile": currentProfile(),
	}
	if err := postJSON("/api/v1/evaluate", req, &response); err != nil {
		return err
	}

	fmt.Print(response.Result.Feedback)
	if !response.Result.Approved {
		os.Exit(1)
	}
	return nil
}

func runRefine(cmd *cobra.Command, args []string) error {
	var response struct {
		Outcome struct {
			Plan           json.RawMessage `json:"plan"`
			ForcedApproval bool            `json:"forced_approval"`
			Result         struct {
				Approved bool   `json:"approved"`
				Feedback string `json:"feedback"`
			} `json:"result"`
			Attempts []struct {
				Number int `json:"number"`
			} `json:"attempts"`
		} `json:"outcome"`
	}
	req := map[string]any{
		"idea":    args[0],
		"profile": currentProfile(),
	}
	if err := postJSON("/api/v1/refine", req, &response); err != nil {
		return err
	}

	out := response.Outcome
	fmt.Fprintf(os.Stderr, "attempts: %d\n", len(out.Attempts))
	if out.ForcedApproval {
		fmt.Fprintln(os.Stderr, "warning: plan accepted best-effort after budget exhaustion")
	}
	fmt.Fprint(os.Stderr, out.Result.Feedback)

	if len(out.Plan) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out.Plan, "", "  "); err == nil {
			fmt.Println(pretty.String())
		} else {
			fmt.Println(string(out.Plan))
		}
	}

	if !out.Result.Approved {
		os.Exit(1)
	}
	return nil
}
