package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kettleworks/bake/baker/config"
	"github.com/kettleworks/bake/baker/run"
	"github.com/kettleworks/bake/internal/clean"
	"github.com/kettleworks/bake/internal/scaffold"
	"github.com/kettleworks/bake/internal/server"
	"github.com/kettleworks/bake/internal/version"
	"github.com/kettleworks/bake/internal/watch"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bake",
		Short:         "Incremental static site baker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newBuildCmd(),
		newCleanCmd(),
		newInitCmd(),
		newNewCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func addBuildFlags(cmd *cobra.Command, opts *config.RunOptions) {
	cmd.Flags().BoolVar(&opts.CleanCache, "full", false, "purge cached output and bake everything")
	cmd.Flags().BoolVar(&opts.Smart, "smart", opts.Smart, "skip documents whose sources are unchanged")
	cmd.Flags().BoolVar(&opts.CopyAssets, "assets", opts.CopyAssets, "copy the static assets after baking")
	cmd.Flags().BoolVar(&opts.Minify, "minify", opts.Minify, "minify rendered html and copied assets")
	cmd.Flags().BoolVar(&opts.InfoOnly, "info", false, "print the bake paths and exit")
	cmd.Flags().StringVar(&opts.Variant, "variant", "", "apply a named configuration variant")
	cmd.Flags().StringSliceVar(&opts.TagCombinations, "tag-combo", nil, `extra composite tag listings ("science/tech")`)
	cmd.Flags().StringSliceVar(&opts.SkipPatterns, "skip", nil, "asset glob patterns to skip")
	cmd.Flags().StringSliceVar(&opts.ForcePatterns, "force", nil, "asset glob patterns to always re-copy")
}

func bakeOnce(ctx context.Context, opts config.RunOptions) error {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return err
	}

	baker, err := run.NewBaker(cfg, opts, afero.NewOsFs())
	if err != nil {
		return err
	}
	defer func() { _ = baker.Close() }()

	return baker.Bake(ctx)
}

func newBuildCmd() *cobra.Command {
	opts := config.DefaultRunOptions()
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bake the site incrementally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return bakeOnce(ctx, opts)
		},
	}
	addBuildFlags(cmd, &opts)
	return cmd
}

func newCleanCmd() *cobra.Command {
	var withCache bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the baked output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clean.Run(withCache)
		},
	}
	cmd.Flags().BoolVar(&withCache, "cache", false, "also drop the record cache")
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new project in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return scaffold.Init()
		},
	}
}

func newNewCmd() *cobra.Command {
	var blogKey string
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a dated post from a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.DefaultFile)
			if err != nil {
				return err
			}
			return scaffold.NewPost(cfg, blogKey, args[0])
		},
	}
	cmd.Flags().StringVar(&blogKey, "blog", "blog", "blog key the post belongs to")
	return cmd
}

func newServeCmd() *cobra.Command {
	opts := config.DefaultRunOptions()
	opts.Minify = false
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bake, then serve with rebuild-on-change and live reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(config.DefaultFile)
			if err != nil {
				return err
			}

			if err := bakeOnce(ctx, opts); err != nil {
				return err
			}

			dirs := []string{cfg.PagesDir, cfg.TemplateDir, cfg.StaticDir}
			for _, blog := range cfg.Blogs {
				dirs = append(dirs, blog.Dir)
			}
			watcher, err := watch.New(dirs, func(watch.Event) {
				if err := bakeOnce(ctx, opts); err != nil {
					fmt.Printf("⚠️ Rebuild failed: %v\n", err)
				}
			})
			if err != nil {
				return err
			}
			go watcher.Start()

			return server.New(server.Options{
				Host:      host,
				Port:      port,
				OutputDir: cfg.OutputDir,
			}).Run(ctx)
		},
	}
	addBuildFlags(cmd, &opts)
	cmd.Flags().StringVar(&host, "host", "localhost", "host to bind to")
	cmd.Flags().StringVar(&port, "port", "2604", "port to listen on")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bake %s\n", version.Version)
		},
	}
}
