package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docvision/pkg/types"
)

// apiClient calls a running docvision server.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
}

// call sends body (if any) as JSON and decodes the response into out. Any
// status but 200 and 400 is an error; 400 bodies carry {status, message}.
func (c *apiClient) call(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		var e types.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s: %d", method, path, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// statusErr turns an {status:"error"} envelope into an error.
func statusErr(m types.StatusMessage) error {
	if m.Status == types.StatusError {
		return fmt.Errorf("%s", m.Message)
	}
	return nil
}

func buildModelsCmd() *cobra.Command {
	var server string
	var timeout time.Duration
	client := func() *apiClient { return newAPIClient(server, timeout) }

	cmd := &cobra.Command{Use: "models", Short: "Manage models on a running server", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("models requires a subcommand: list|current|set|pull|status|cancel")
	}}
	defServer := os.Getenv("DOCVISION_SERVER")
	if defServer == "" {
		defServer = "http://localhost:8000"
	}
	cmd.PersistentFlags().StringVar(&server, "server", defServer, "Server base URL (defaults DOCVISION_SERVER)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	list := &cobra.Command{Use: "list", Short: "List available models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		var out types.ModelsResponse
		if err := client().call(cmd.Context(), http.MethodGet, "/models/available", nil, &out); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, m := range out.Models {
			mark := " "
			if m.IsActive {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s\n", mark, m.Name)
		}
		return nil
	}}
	current := &cobra.Command{Use: "current", Short: "Show the active model", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		var out types.CurrentModelResponse
		if err := client().call(cmd.Context(), http.MethodGet, "/models/current", nil, &out); err != nil {
			return err
		}
		if out.Status == types.StatusError {
			return fmt.Errorf("%s", out.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Model)
		return nil
	}}
	set := &cobra.Command{Use: "set <model>", Short: "Set the active model", Example: "  docvisiond models set llava:7b", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		var out types.StatusMessage
		if err := client().call(cmd.Context(), http.MethodPost, "/models/set/"+url.PathEscape(args[0]), nil, &out); err != nil {
			return err
		}
		if err := statusErr(out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		return nil
	}}
	var wait bool
	var interval time.Duration
	pull := &cobra.Command{Use: "pull <model>", Short: "Start downloading a model", Example: "  docvisiond models pull mistral --wait", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		c := client()
		var out types.StatusMessage
		if err := c.call(cmd.Context(), http.MethodPost, "/models/download", types.DownloadRequest{ModelName: args[0]}, &out); err != nil {
			return err
		}
		if err := statusErr(out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		if !wait {
			return nil
		}
		return waitDownload(cmd.Context(), c, cmd.OutOrStdout(), interval)
	}}
	pull.Flags().BoolVar(&wait, "wait", false, "Poll until the download finishes")
	pull.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval with --wait")
	status := &cobra.Command{Use: "status", Short: "Show the download status", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		var out types.DownloadStatusResponse
		if err := client().call(cmd.Context(), http.MethodGet, "/models/download-status", nil, &out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatStatus(out))
		return nil
	}}
	cancel := &cobra.Command{Use: "cancel", Short: "Cancel the running download", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		var out types.StatusMessage
		if err := client().call(cmd.Context(), http.MethodPost, "/models/cancel-download", nil, &out); err != nil {
			return err
		}
		if err := statusErr(out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		return nil
	}}
	cmd.AddCommand(list, current, set, pull, status, cancel)
	return cmd
}

func formatStatus(s types.DownloadStatusResponse) string {
	name := "-"
	if s.ModelName != nil {
		name = *s.ModelName
	}
	return fmt.Sprintf("%s %s %d%% %s", name, s.Status, s.Progress, s.Message)
}

// waitDownload polls the status until the job leaves "downloading".
func waitDownload(ctx context.Context, c *apiClient, w io.Writer, every time.Duration) error {
	if every <= 0 {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	last := ""
	for {
		var st types.DownloadStatusResponse
		if err := c.call(ctx, http.MethodGet, "/models/download-status", nil, &st); err != nil {
			return err
		}
		if line := formatStatus(st); line != last {
			fmt.Fprintln(w, line)
			last = line
		}
		switch st.Status {
		case "completed":
			return nil
		case "error", "cancelled":
			return fmt.Errorf("download %s: %s", st.Status, st.Message)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
