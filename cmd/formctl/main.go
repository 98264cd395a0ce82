// Package main provides the entry point for formctl.
//
// formctl is the command-line respondent client. It validates access
// tokens for private forms, submits anonymous responses, and keeps a
// local record of which forms this device has already unlocked or
// answered so respondents are not re-prompted for a token.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/formloop/formloop/pkg/accessgate"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "formctl",
		Usage: "respond to feedback forms from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "base URL of the form server",
				Value:   "http://localhost:8080",
				EnvVars: []string{"FORMLOOP_SERVER"},
			},
			&cli.StringFlag{
				Name:    "state-file",
				Usage:   "path to the local access state file",
				EnvVars: []string{"FORMLOOP_STATE_FILE"},
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			submitCommand(),
			statusCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "redeem an access token for a private form",
		ArgsUsage: "<form-id> <token>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: formctl validate <form-id> <token>")
			}
			formID := c.Args().Get(0)
			token := c.Args().Get(1)

			gate, err := openGate(c)
			if err != nil {
				return err
			}

			if gate.HasAccess(formID) {
				fmt.Println("form already unlocked on this device")
				return nil
			}

			body := map[string]string{"form_id": formID, "token": token}
			status, respBody, err := postJSON(c.String("server")+"/forms/validate-token", body)
			if err != nil {
				return err
			}

			switch status {
			case http.StatusOK:
				if err := gate.Grant(formID); err != nil {
					return err
				}
				fmt.Println("token accepted, form unlocked")
				return nil
			case http.StatusNotFound:
				return fmt.Errorf("invalid token")
			case http.StatusForbidden:
				return fmt.Errorf("token already used")
			default:
				return fmt.Errorf("server returned %d: %s", status, apiMessage(respBody))
			}
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "submit an anonymous response",
		ArgsUsage: "<form-id> <question-id>=<answer> [...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: formctl submit <form-id> <question-id>=<answer> [...]")
			}
			formID := c.Args().Get(0)

			answers := make(map[string]string)
			for _, arg := range c.Args().Slice()[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("answers must be <question-id>=<answer>, got %q", arg)
				}
				answers[key] = value
			}

			gate, err := openGate(c)
			if err != nil {
				return err
			}

			if gate.HasSubmitted(formID) {
				return fmt.Errorf("a response was already submitted for this form from this device")
			}

			form, err := fetchForm(c.String("server"), formID)
			if err != nil {
				return err
			}
			if form.Type == "private" && !gate.HasAccess(formID) {
				return fmt.Errorf("form is private, run: formctl validate %s <token>", formID)
			}

			body := map[string]interface{}{"form_id": formID, "answers": answers}
			status, respBody, err := postJSON(c.String("server")+"/responses", body)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("server returned %d: %s", status, apiMessage(respBody))
			}

			if err := gate.MarkSubmitted(formID); err != nil {
				return err
			}
			fmt.Println("response submitted")
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show local access state for a form",
		ArgsUsage: "<form-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: formctl status <form-id>")
			}
			formID := c.Args().Get(0)

			gate, err := openGate(c)
			if err != nil {
				return err
			}

			fmt.Printf("unlocked:  %v\n", gate.HasAccess(formID))
			fmt.Printf("submitted: %v\n", gate.HasSubmitted(formID))
			return nil
		},
	}
}

func openGate(c *cli.Context) (*accessgate.Gate, error) {
	path := c.String("state-file")
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(configDir, "formloop", "access.json")
	}
	return accessgate.Open(path)
}

type formInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func fetchForm(server, formID string) (*formInfo, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(server + "/forms/" + formID)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("form not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var form formInfo
	if err := json.NewDecoder(resp.Body).Decode(&form); err != nil {
		return nil, fmt.Errorf("failed to decode form: %w", err)
	}
	return &form, nil
}

func postJSON(url string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// apiMessage pulls the human readable message out of an error envelope,
// falling back to the raw body.
func apiMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(body))
}
