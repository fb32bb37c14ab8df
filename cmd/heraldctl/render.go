package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/integration/gitlab"
	"basegraph.app/herald/internal/integration/redmine"
	"basegraph.app/herald/internal/payload"
)

var (
	renderIntegration string
	renderFile        string
	renderHeaders     []string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a webhook payload without sending it",
	Long: `Render a webhook payload the way the server would, printing the topic
and message body. Nothing is sent.

Examples:
  heraldctl render --integration redmine --file issue_opened.json
  heraldctl render --integration gitlab --file note.json --header "X-Gitlab-Event=Note Hook"
  cat payload.json | heraldctl render --integration redmine`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readPayload(cmd.InOrStdin(), renderFile)
		if err != nil {
			return err
		}
		headers, err := parseHeaders(renderHeaders)
		if err != nil {
			return err
		}

		notification, err := render(cmd.Context(), newRegistry(), renderIntegration, body, headers)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "event: %s\ntopic: %s\n\n%s\n",
			notification.EventType, notification.Topic, notification.Body)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderIntegration, "integration", "i", "redmine", "Integration the payload came from")
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "Payload file (default: stdin)")
	renderCmd.Flags().StringArrayVarP(&renderHeaders, "header", "H", nil, "Request header as Key=Value (repeatable)")
}

func newRegistry() *integration.Registry {
	return integration.NewRegistry(redmine.New(), gitlab.New())
}

func render(ctx context.Context, registry *integration.Registry, name string, body []byte, headers map[string]string) (*integration.Notification, error) {
	normalizer, err := registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(registry.Names(), ", "))
	}

	value, err := payload.Parse(body)
	if err != nil {
		return nil, err
	}

	notification, err := normalizer.Normalize(ctx, value, headers)
	if err != nil {
		return nil, fmt.Errorf("rendering %s payload: %w", name, err)
	}
	return notification, nil
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	return body, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected Key=Value", h)
		}
		headers[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}
