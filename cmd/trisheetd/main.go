/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command trisheetd runs the shared question bank server. Configuration comes
// from the environment (TRISHEET_PG_DSN or DATABASE_URL, ADDR or PORT,
// TRISHEET_AUTH_SECRET); flags override it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trisheet/internal/backend"
	"trisheet/internal/crash"
	applog "trisheet/internal/log"
	"trisheet/internal/version"
)

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("daemon")
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(nil, r)
		}
	}()

	opts := backend.FromEnv()
	fs := flag.NewFlagSet("trisheetd", flag.ExitOnError)
	fs.StringVar(&opts.Addr, "addr", opts.Addr, "HTTP bind address, e.g. :8080")
	fs.StringVar(&opts.DBURL, "db", opts.DBURL, "Postgres DSN")
	fs.StringVar(&opts.AuthSecret, "secret", opts.AuthSecret, "token signing secret")
	showVersion := fs.Bool("version", false, "print the version and exit")
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println("trisheetd", version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("starting", slog.String("version", version.String()))
	if err := backend.Start(ctx, opts); err != nil {
		l.Error("server failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	l.Info("shutdown complete")
}
