package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/language"
	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
	"github.com/hanpama/gqlclient/transport/wstp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func introspectCommand(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Fetch the introspection result of --endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tp, err := g.httpTransport()
			if err != nil {
				return err
			}
			raw, err := client.NewBackendProvider(tp).LoadSchema(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := schema.Parse(raw); err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}
			return os.WriteFile(out, raw, 0o644)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the result to a file instead of stdout")
	return cmd
}

func schemaCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), schema.Render(s))
			return err
		},
	}
}

// operationFlags are shared by build and run.
type operationFlags struct {
	selections []string
	vars       []string
	pretty     bool
}

func (f *operationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.selections, "select", nil, "Field to select, dotted for nesting (friends.name). Repeatable; default is automatic")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Operation input as name=value; JSON values are decoded. Repeatable")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty print the operation text")
}

func (f *operationFlags) options() ([]client.RequestOption, error) {
	var opts []client.RequestOption
	if len(f.selections) > 0 {
		opts = append(opts, client.Select(parseSelection(f.selections)...))
	}
	for _, v := range f.vars {
		name, value, err := parseVar(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.Input(name, value))
	}
	return opts, nil
}

func parseKind(s string) (schema.OperationType, error) {
	kind := schema.OperationType(strings.ToLower(s))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown operation type %q", s)
	}
	return kind, nil
}

func buildCommand(g *globals) *cobra.Command {
	var f operationFlags
	cmd := &cobra.Command{
		Use:   "build <query|mutation|subscription> <field>",
		Short: "Print the request an operation would send",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			s, err := g.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			op, err := client.NewServiceProxy(kind, nil, s, g.cfg.Settings, nil, g.logger).Operation(args[1])
			if err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			req, err := op.CreateRequest(opts...)
			if err != nil {
				return err
			}
			text := req.Query
			if f.pretty {
				if text, err = language.FormatQuery(req.Query); err != nil {
					return err
				}
			}
			if doc := op.Doc(); doc != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", doc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return writeJSON(cmd.OutOrStdout(), req.Variables)
		},
	}
	f.register(cmd)
	return cmd
}

func runCommand(g *globals) *cobra.Command {
	var f operationFlags
	cmd := &cobra.Command{
		Use:   "run <query|mutation> <field>",
		Short: "Send an operation to --endpoint and print the response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if kind == schema.OperationSubscription {
				return fmt.Errorf("use the subscribe command for subscriptions")
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			tp, err := g.httpTransport()
			if err != nil {
				return err
			}
			s, err := g.loadSchema(ctx)
			if err != nil {
				return err
			}
			svc, err := serviceFor(ctx, g.newClient(tp, s), kind)
			if err != nil {
				return err
			}
			op, err := svc.Operation(args[1])
			if err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			resp, err := op.Call(ctx, opts...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Raw)
		},
	}
	f.register(cmd)
	return cmd
}

func subscribeCommand(g *globals) *cobra.Command {
	var f operationFlags
	cmd := &cobra.Command{
		Use:   "subscribe <field>",
		Short: "Subscribe over --ws-endpoint and print each message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.WSEndpoint == "" {
				return fmt.Errorf("--ws-endpoint is required")
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			var opts []wstp.Option
			for k, v := range g.cfg.Headers {
				opts = append(opts, wstp.WithHeader(k, v))
			}
			opts = append(opts, wstp.WithLogger(g.logger))
			conn, err := wstp.Dial(ctx, g.cfg.WSEndpoint, opts...)
			if err != nil {
				return err
			}
			defer conn.Close()

			var s *schema.Schema
			if g.schemaProvider() != nil {
				s, err = g.loadSchema(ctx)
			} else {
				s, err = schema.NewLoader(nil, g.logger).Load(ctx, client.NewBackendProvider(conn))
			}
			if err != nil {
				return err
			}
			sub, err := g.newClient(conn, s).Subscription(ctx)
			if err != nil {
				return err
			}
			op, err := sub.Operation(args[0])
			if err != nil {
				return err
			}
			reqOpts, err := f.options()
			if err != nil {
				return err
			}
			resp, err := op.Call(ctx, reqOpts...)
			if err != nil {
				return err
			}
			for msg, err := range resp.All(ctx) {
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), msg.Raw); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func serviceFor(ctx context.Context, c *client.Client, kind schema.OperationType) (*client.ServiceProxy, error) {
	switch kind {
	case schema.OperationMutation:
		return c.Mutation(ctx)
	case schema.OperationSubscription:
		return c.Subscription(ctx)
	default:
		return c.Query(ctx)
	}
}

func writeJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

// parseVar splits name=value. Values that decode as JSON are passed
// decoded, anything else as a string.
func parseVar(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid --var %q, want name=value", s)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return name, raw, nil
	}
	return name, v, nil
}

type selectionNode struct {
	name     string
	children []*selectionNode
}

func (n *selectionNode) child(name string) *selectionNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	c := &selectionNode{name: name}
	n.children = append(n.children, c)
	return c
}

func (n *selectionNode) items() []any {
	out := make([]any, 0, len(n.children))
	for _, c := range n.children {
		if len(c.children) == 0 {
			out = append(out, c.name)
			continue
		}
		out = append(out, query.Sub(c.name, c.items()...))
	}
	return out
}

// parseSelection turns dotted paths into selection items, keeping the
// order in which paths were given.
func parseSelection(paths []string) []any {
	root := &selectionNode{}
	for _, p := range paths {
		for _, entry := range strings.Split(p, ",") {
			n := root
			for _, part := range strings.Split(strings.TrimSpace(entry), ".") {
				if part == "" {
					continue
				}
				n = n.child(part)
			}
		}
	}
	return root.items()
}
