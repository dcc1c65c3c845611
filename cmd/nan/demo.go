package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	nan "github.com/dep2p/go-nan"
	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/radio/stub"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

type demoOptions struct {
	nodes      int
	message    string
	timeout    time.Duration
	outputJSON bool
}

type demoReceipt struct {
	Node    string `json:"node"`
	From    uint32 `json:"from"`
	Payload string `json:"payload"`
}

type demoReport struct {
	Publisher   string        `json:"publisher"`
	Subscribers []string      `json:"subscribers"`
	Greeted     int           `json:"greeted"`
	Attempted   int           `json:"attempted"`
	Failed      int           `json:"failed"`
	Received    []demoReceipt `json:"received"`
}

func newDemoCmd() *cobra.Command {
	var opts demoOptions
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run one publisher and several subscribers on an in-process medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.nodes < 2 {
				return fmt.Errorf("--nodes must be at least 2")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			report, err := runDemo(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.nodes, "nodes", 3, "Total number of nodes (one publisher, the rest subscribe)")
	cmd.Flags().StringVar(&opts.message, "message", "hi", "Message the publisher broadcasts")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "How long to wait for discovery and delivery")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Print as JSON")
	return cmd
}

type demoNode struct {
	name  string
	node  *nan.Node
	inbox pkgif.Subscription
}

func runDemo(ctx context.Context, cfg *config.Config, opts demoOptions) (*demoReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	medium := stub.NewMedium()
	start := func(name string, extra ...nan.Option) (*demoNode, error) {
		base := []nan.Option{
			nan.WithConfig(cfg),
			nan.WithRadio(medium.NewRadio()),
			nan.WithDeviceID(name),
		}
		node, err := nan.Start(ctx, append(base, extra...)...)
		if err != nil {
			return nil, fmt.Errorf("start %s: %w", name, err)
		}
		inbox, err := node.EventBus().Subscribe(new(nan.EvtMessageReceived))
		if err != nil {
			_ = node.Close()
			return nil, err
		}
		return &demoNode{name: name, node: node, inbox: inbox}, nil
	}

	var all []*demoNode
	defer func() {
		for _, n := range all {
			_ = n.inbox.Close()
			_ = n.node.Close()
		}
	}()

	pub, err := start("publisher", nan.WithAutoPublish(true), nan.WithAutoSubscribe(false))
	if err != nil {
		return nil, err
	}
	all = append(all, pub)
	if err := pub.node.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := pub.node.WaitForState(ctx, nan.Publishing); err != nil {
		return nil, err
	}

	report := &demoReport{Publisher: pub.name}
	subs := make([]*demoNode, 0, opts.nodes-1)
	for i := 1; i < opts.nodes; i++ {
		sub, err := start(fmt.Sprintf("subscriber-%d", i), nan.WithAutoPublish(false), nan.WithAutoSubscribe(true))
		if err != nil {
			return nil, err
		}
		all = append(all, sub)
		subs = append(subs, sub)
		report.Subscribers = append(report.Subscribers, sub.name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		g.Go(func() error {
			return sub.node.Initialize(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 订阅者发现发布者后会问候，发布者由此登记订阅者
	if err := waitUntil(ctx, func() bool { return len(pub.node.Peers()) == len(subs) }); err != nil {
		return nil, fmt.Errorf("waiting for greetings: %w", err)
	}
	report.Greeted = len(pub.node.Peers())

	res, err := pub.node.BroadcastMessage(ctx, []byte(opts.message))
	if err != nil {
		return nil, err
	}
	report.Attempted = res.Attempted
	report.Failed = len(res.Failures)

	for _, sub := range subs {
		select {
		case raw := <-sub.inbox.Out():
			msg := raw.(nan.EvtMessageReceived)
			report.Received = append(report.Received, demoReceipt{
				Node:    sub.name,
				From:    uint32(msg.Peer),
				Payload: string(msg.Payload),
			})
		case <-ctx.Done():
			return report, fmt.Errorf("waiting for delivery to %s: %w", sub.name, ctx.Err())
		}
	}
	return report, nil
}

func waitUntil(ctx context.Context, cond func() bool) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func printReport(w io.Writer, r *demoReport) {
	_, _ = fmt.Fprintf(w, "publisher: %s\n", r.Publisher)
	_, _ = fmt.Fprintf(w, "subscribers: %d greeted=%d\n", len(r.Subscribers), r.Greeted)
	_, _ = fmt.Fprintf(w, "broadcast: attempted=%d failed=%d\n", r.Attempted, r.Failed)
	for _, rc := range r.Received {
		_, _ = fmt.Fprintf(w, "  %s <- peer-%d: %q\n", rc.Node, rc.From, rc.Payload)
	}
}
