// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command nanod runs the networking core standalone: it binds the
// datagram transport, drives the peer lifecycle manager, and keeps the
// address registry and statistics engine alive until interrupted. The
// ledger, proof-of-work generator, RPC/IPC, and consensus confirmation
// engine it would otherwise feed are out of scope and are not started.
package main

import (
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/decred/slog"
	"github.com/decred/vigil-netcore/addrmgr"
	"github.com/decred/vigil-netcore/config"
	"github.com/decred/vigil-netcore/connmgr"
	"github.com/decred/vigil-netcore/parser"
	"github.com/decred/vigil-netcore/stats"
	"github.com/decred/vigil-netcore/timer"
	"github.com/decred/vigil-netcore/transport"
	"github.com/decred/vigil-netcore/uniquer"
	"github.com/decred/vigil-netcore/wire"
)

// options are the command-line flags, go-flags' struct-tag idiom for a
// single top-level command with no subcommands.
type options struct {
	Network             string   `long:"network" description:"Network to join: live, beta, or test" default:"live"`
	Port                uint16   `long:"port" description:"UDP port to bind (0 selects the default port, the same on every network)"`
	AllowLocal          bool     `long:"allowlocal" description:"Accept datagrams from reserved/local address ranges"`
	IOWorkers           int      `long:"ioworkers" description:"Receive-loop goroutine count"`
	MaxPeersPerIP       int      `long:"maxpeersperip" description:"Channel registry cap per remote IP"`
	UnlimitedPeersPerIP bool     `long:"unlimitedpeersperip" description:"Disable the per-IP channel cap"`
	PeerDb              string   `long:"peerdb" description:"Path to the persisted peer list"`
	IdentityFile        string   `long:"identityfile" description:"Path to this node's persisted node-id seed" default:"nodeid.seed"`
	PreconfiguredPeer   []string `long:"peer" description:"Preconfigured peer endpoint (host:port), may be repeated"`
	DataDir             string   `long:"datadir" description:"Directory for persisted state" default:"."`
}

func (o *options) toConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Network = o.Network
	cfg.Port = o.Port
	cfg.AllowLocal = o.AllowLocal
	cfg.IOWorkers = o.IOWorkers
	cfg.MaxPeersPerIP = o.MaxPeersPerIP
	cfg.UnlimitedPeersPerIP = o.UnlimitedPeersPerIP
	cfg.PreconfiguredPeers = o.PreconfiguredPeer
	if o.PeerDb != "" {
		cfg.PeerDbFilename = o.PeerDb
	}
	cfg.Normalize()
	return cfg
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	backend := slog.NewBackend(os.Stdout)
	log := backend.Logger("NODE")
	log.SetLevel(slog.LevelInfo)
	addrmgr.UseLogger(backend.Logger("ADDR"))
	connmgr.UseLogger(backend.Logger("CONN"))
	transport.UseLogger(backend.Logger("TRNS"))
	stats.UseLogger(backend.Logger("STAT"))

	cfg := opts.toConfig()
	params, err := cfg.Validate()
	if err != nil {
		return err
	}

	stat := stats.New(cfg.Stats)
	defer stat.Stop()

	statLogger, err := stats.NewLogger(stat, cfg.Stats, opts.DataDir)
	if err != nil {
		return err
	}
	go statLogger.Run()
	defer statLogger.Stop()

	registry := addrmgr.New(cfg.MaxPeersPerIP, cfg.UnlimitedPeersPerIP)

	peerDbPath := filepath.Join(opts.DataDir, cfg.PeerDbFilename)
	peerStore := newFilePeerStore(peerDbPath)
	if saved, err := peerStore.Load(); err == nil {
		for _, ep := range saved {
			registry.Insert(ep, wire.CurrentVersion)
		}
	}
	for _, ep := range cfg.PreconfiguredEndpoints() {
		registry.Insert(ep, wire.CurrentVersion)
	}

	id, err := loadOrCreateIdentity(filepath.Join(opts.DataDir, opts.IdentityFile))
	if err != nil {
		return err
	}

	tm := timer.New()
	defer tm.Stop()

	cookies := connmgr.NewCookieStore(params.SynCookieCutoff)

	baseHeader := wire.NewHeader(params.Magic, wire.CurrentVersion, wire.CurrentVersion, wire.MinSupportedVersion, 0)

	blocks := uniquer.NewBlockUniquer()
	votes := uniquer.NewVoteUniquer(blocks)

	var tr *transport.Transport
	sender := senderFunc(func(ep netip.AddrPort, msg wire.Message) error {
		payload, err := wire.Marshal(baseHeader, msg)
		if err != nil {
			return err
		}
		return tr.Send(ep, payload)
	})

	manager := connmgr.New(registry, cookies, tm, stat, sender, id, params.Period)

	tr, err = transport.New(transport.Config{
		Port:          cfg.Port,
		IsTestNetwork: cfg.Network == "test",
		AllowLocal:    cfg.AllowLocal,
		IOWorkers:     cfg.IOWorkers,
		Stat:          stat,
		Handler: func(from netip.AddrPort, payload []byte) {
			p := parser.New(params.Magic, wire.MinSupportedVersion, blocks, votes, nil,
				&dispatcher{manager: manager, stat: stat, from: from})
			if status := p.Parse(payload); status != parser.StatusSuccess {
				log.Debugf("parse error from %s: %s", from, status)
			}
		},
	})
	if err != nil {
		return err
	}

	tr.Start()
	manager.Start()
	log.Infof("listening on %s, network %s", tr.LocalEndpoint(), params.Name)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	log.Info("shutting down")
	tr.Stop()

	purged := registry.Purge(time.Now().Add(-params.Cutoff))
	log.Infof("purged %d stale channels before persisting", purged)

	if err := connmgr.StoreAll(peerStore, registry, true); err != nil {
		log.Errorf("storing peer list: %v", err)
	}
	return nil
}

// senderFunc adapts a plain function to connmgr.Sender.
type senderFunc func(ep netip.AddrPort, msg wire.Message) error

func (f senderFunc) Send(ep netip.AddrPort, msg wire.Message) error {
	return f(ep, msg)
}
