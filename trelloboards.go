/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"strconv"

	"github.com/jecluis/trelloboards/config"
	"github.com/jecluis/trelloboards/fs"
	"github.com/jecluis/trelloboards/trello"

	"github.com/jacobsa/fuse"
	flag "github.com/spf13/pflag"
)

var (
	fConfig     = flag.StringP("config", "c", "", "Path to YAML or JSON config file.")
	fEnv        = flag.String("env", ".env", "Path to .env file with TRELLO_* credentials.")
	fMountPoint = flag.StringP("mount", "m", "", "Path to mount point. Prints the board tree when empty.")
	fDebug      = flag.Bool("debug", false, "Enable debug logging.")
)

func main() {

	flag.Parse()

	level := slog.LevelInfo
	if *fDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *fConfig != "" || os.Getenv("TRELLO_CONFIG") != "" {
		return config.ReadConfig(*fConfig)
	}
	return config.LoadEnv(*fEnv)
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	exec := cfg.Executor()
	exec.Logger = logger
	client, err := trello.New(cfg.Credentials(), exec, trello.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *fMountPoint == "" {
		tree, err := trello.BuildTree(ctx, client)
		if err != nil {
			return err
		}
		return tree.WriteYAML(os.Stdout)
	}
	return mount(ctx, client, logger)
}

func mount(ctx context.Context, client *trello.Trello, logger *slog.Logger) error {
	current, err := user.Current()
	if err != nil {
		return err
	}
	uid, err := strconv.ParseUint(current.Uid, 10, 32)
	if err != nil {
		return err
	}
	gid, err := strconv.ParseUint(current.Gid, 10, 32)
	if err != nil {
		return err
	}

	server, err := fs.NewTrelloFS(uint32(uid), uint32(gid), client, logger)
	if err != nil {
		return err
	}

	cfg := &fuse.MountConfig{
		FSName:                  "trelloboards",
		DisableWritebackCaching: true,
		ReadOnly:                true,
	}

	mfs, err := fuse.Mount(*fMountPoint, server, cfg)
	if err != nil {
		return fmt.Errorf("error mounting %s: %w", *fMountPoint, err)
	}
	logger.Info("mounted", "mountpoint", *fMountPoint)

	go func() {
		<-ctx.Done()
		if err := fuse.Unmount(*fMountPoint); err != nil {
			logger.Error("error unmounting", "mountpoint", *fMountPoint, "err", err)
		}
	}()

	if err := mfs.Join(context.Background()); err != nil {
		return fmt.Errorf("error waiting for filesystem: %w", err)
	}
	return nil
}
