/*
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/comcast/smartarray/buildinfo"
	"github.com/comcast/smartarray/common"
	"github.com/comcast/smartarray/config"
	"github.com/comcast/smartarray/exporter"
	"github.com/comcast/smartarray/hpacucli"
	"github.com/comcast/smartarray/http/handlers"
	"github.com/comcast/smartarray/logger"
	"github.com/comcast/smartarray/middleware/logging"
	"github.com/comcast/smartarray/middleware/muxprom"
	sa_vault "github.com/comcast/smartarray/vault"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	app = "smartarray"
)

var (
	a                  = kingpin.New(app, "HP Smart Array controller management through hpacucli, with a prometheus exporter and a JSON API")
	commandTimeout     = a.Flag("hpacucli.timeout", "time to wait for the hpacucli prompt after a command").Default("30s").Envar("HPACUCLI_TIMEOUT").Duration()
	launchTimeout      = a.Flag("hpacucli.launch-timeout", "time to wait for the first hpacucli prompt").Default("30s").Envar("HPACUCLI_LAUNCH_TIMEOUT").Duration()
	insecureSkipVerify = a.Flag("insecure-skip-verify", "Skip TLS verification of the vector endpoint").Default("false").Envar("INSECURE_SKIP_VERIFY").Bool()
	logLevel           = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod          = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath        = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/smartarray").Envar("LOG_FILE_PATH").String()
	logFileMaxSize     = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").Int()
	logFileMaxBackups  = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").Int()
	logFileMaxAge      = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").Int()
	vectorEndpoint     = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()
	outputFormat       = a.Flag("output", "output format of the query commands, table on a terminal and json otherwise by default").Short('o').PlaceHolder("[table|json|yaml]").Default("").Envar("SMARTARRAY_OUTPUT").Enum("", formatTable, formatJSON, formatYAML)

	serveCmd       = a.Command("serve", "run the exporter and the JSON API").Default()
	exporterPort   = serveCmd.Flag("port", "exporter port").Default("10024").Envar("EXPORTER_PORT").String()
	sessions       = serveCmd.Flag("sessions", "number of hpacucli processes, controllers are scraped in parallel over them").Default("1").Envar("HPACUCLI_SESSIONS").Int()
	ldDetails      = serveCmd.Flag("collector.logical-drive-details", "query every logical drive for its disk name").Default("false").Envar("COLLECTOR_LOGICAL_DRIVE_DETAILS").Bool()
	apiToken       = serveCmd.Flag("api.token", "static bearer token guarding the create and delete endpoints").Default("").Envar("SMARTARRAY_API_TOKEN").String()
	vaultAddr      = serveCmd.Flag("vault.addr", "Vault instance address to get the api token from").Default("https://vault.com").Envar("VAULT_ADDRESS").String()
	vaultRoleId    = serveCmd.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId  = serveCmd.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	vaultSecret    = common.SecretProfileFlag(serveCmd.Flag("vault.secret",
		`location of the api token in vault, i.e.
  --vault.secret="
    mountPath: kv2
    path: path/to/secret
    secretName: smartarray
    tokenField: token
  "
--vault.secret='{"mountPath":"kv2","path":"path/to/secret","secretName":"smartarray","tokenField":"token"}'`).Envar("VAULT_SECRET"))

	controllersCmd = a.Command("controllers", "list the Smart Array controllers")

	logicalDrivesCmd      = a.Command("logical-drives", "list the logical drives of a controller by array")
	logicalDrivesSelector = logicalDrivesCmd.Arg("selector", "controller selector, a slot number or slot=N").Required().String()

	physicalDrivesCmd      = a.Command("physical-drives", "list the physical drives of a controller by array")
	physicalDrivesSelector = physicalDrivesCmd.Arg("selector", "controller selector, a slot number or slot=N").Required().String()

	logicalDriveCmd      = a.Command("logical-drive", "show the details of one logical drive")
	logicalDriveSelector = logicalDriveCmd.Arg("selector", "controller selector, a slot number or slot=N").Required().String()
	logicalDriveID       = logicalDriveCmd.Arg("id", "logical drive number").Required().String()

	createCmd      = a.Command("create", "create a logical drive and print its disk name")
	createSelector = createCmd.Arg("selector", "controller selector, a slot number or slot=N").Required().String()
	createDrives   = createCmd.Flag("drives", "physical drives of the new logical drive, i.e. 1I:1:1").Required().Strings()
	createRAID     = createCmd.Flag("raid", "RAID level, i.e. 0, 1, 1+0, 5").Required().String()

	deleteCmd      = a.Command("delete", "delete the whole configuration of a controller")
	deleteSelector = deleteCmd.Arg("selector", "controller selector, a slot number or slot=N").Required().String()
	deleteForce    = deleteCmd.Flag("force", "confirm the deletion, every logical drive is lost").Default("false").Bool()

	versionCmd = a.Command("version", "print the build information")

	log *zap.Logger
)

func main() {
	a.HelpFlag.Short('h')

	cmd, err := a.Parse(os.Args[1:])
	a.FatalIfError(err, "error parsing argument flags")

	if cmd == versionCmd.FullCommand() {
		if err := buildinfo.Print(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if os.IsNotExist(err) {
			panic(err)
		}
		if !fd.IsDir() {
			panic(fmt.Errorf("%s is not a directory", *logFilePath))
		}
	}

	config.NewConfig(&config.Config{
		CommandTimeout:      *commandTimeout,
		LaunchTimeout:       *launchTimeout,
		Sessions:            *sessions,
		LogicalDriveDetails: *ldDetails,
		InsecureSkipVerify:  *insecureSkipVerify,
	})

	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    *logFileMaxSize,
			MaxBackups: *logFileMaxBackups,
			MaxAge:     *logFileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
	}

	err = logger.Initialize(app, hostname, logConfig)
	if err != nil {
		panic(fmt.Errorf("error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s - err=%s",
			*logMethod, *vectorEndpoint, *logFilePath, err.Error()))
	}

	log = zap.L()
	defer logger.Flush()

	if *logMethod == "vector" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("vector_endpoint", *vectorEndpoint))
	} else if *logMethod == "file" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("log_file_path", *logFilePath),
			zap.Int("log_file_max_size", *logFileMaxSize),
			zap.Int("log_file_max_backups", *logFileMaxBackups),
			zap.Int("log_file_max_age", *logFileMaxAge))
	}

	if cmd == serveCmd.FullCommand() {
		serve()
		return
	}

	if err := runQuery(cmd); err != nil {
		log.Error("command failed", zap.String("command", cmd), zap.Error(err))
		logger.Flush()
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", app, err)
		os.Exit(1)
	}
}

func newSession() *hpacucli.Session {
	cfg := config.GetConfig()
	return hpacucli.NewSession(
		hpacucli.WithTimeout(cfg.CommandTimeout),
		hpacucli.WithLaunchTimeout(cfg.LaunchTimeout),
		hpacucli.WithLogger(zap.L()),
	)
}

// runQuery runs one of the one shot commands over a fresh hpacucli session
func runQuery(cmd string) error {
	if cmd == deleteCmd.FullCommand() && !*deleteForce {
		return fmt.Errorf("refusing to delete the configuration of %s without --force", *deleteSelector)
	}

	sess := newSession()
	defer sess.Close()
	if !sess.Launch() {
		return fmt.Errorf("unable to launch %s", hpacucli.DefaultPath)
	}

	return execute(hpacucli.NewCli(sess), cmd, newPrinter(os.Stdout, *outputFormat))
}

// execute runs cmd against client and prints the result
func execute(client handlers.ArrayClient, cmd string, p *printer) error {
	switch cmd {
	case controllersCmd.FullCommand():
		ctrls, err := client.Controllers()
		if err != nil {
			return err
		}
		return p.controllers(ctrls)

	case logicalDrivesCmd.FullCommand():
		sel, err := handlers.Selector(*logicalDrivesSelector)
		if err != nil {
			return err
		}
		arrays, err := client.LogicalDrives(sel)
		if err != nil {
			return err
		}
		return p.logicalDrives(arrays)

	case physicalDrivesCmd.FullCommand():
		sel, err := handlers.Selector(*physicalDrivesSelector)
		if err != nil {
			return err
		}
		arrays, err := client.PhysicalDrives(sel)
		if err != nil {
			return err
		}
		return p.physicalDrives(arrays)

	case logicalDriveCmd.FullCommand():
		sel, err := handlers.Selector(*logicalDriveSelector)
		if err != nil {
			return err
		}
		detail, err := client.LogicalDrive(sel, *logicalDriveID)
		if err != nil {
			return err
		}
		return p.logicalDrive(detail)

	case createCmd.FullCommand():
		sel, err := handlers.Selector(*createSelector)
		if err != nil {
			return err
		}
		diskName, err := client.CreateLogicalDrive(sel, splitDrives(*createDrives), *createRAID)
		if err != nil {
			return err
		}
		return p.created(diskName)

	case deleteCmd.FullCommand():
		sel, err := handlers.Selector(*deleteSelector)
		if err != nil {
			return err
		}
		log.Warn("deleting controller configuration", zap.String("selector", sel))
		return client.DeleteConfig(sel)
	}

	return fmt.Errorf("unknown command %q", cmd)
}

// splitDrives accepts --drives repeated as well as comma separated
func splitDrives(values []string) []string {
	var drives []string
	for _, v := range values {
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				drives = append(drives, d)
			}
		}
	}
	return drives
}

// launchSessions starts n hpacucli sessions. Sessions failing to launch are
// closed and left out, the first session is always returned so the API has
// something to answer ErrNotReady with.
func launchSessions(n int) (all []*hpacucli.Session, ready []exporter.Client) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		sess := newSession()
		all = append(all, sess)
		if !sess.Launch() {
			log.Error("unable to launch hpacucli session", zap.Int("session", i), zap.String("path", hpacucli.DefaultPath))
			continue
		}
		ready = append(ready, hpacucli.NewCli(sess))
	}
	return all, ready
}

func newTokenStore(ctx context.Context, wg *sync.WaitGroup, stop <-chan struct{}) *common.TokenStore {
	if *apiToken != "" {
		return common.NewStaticTokenStore(*apiToken)
	}

	// configure vault client if vaultRoleId & vaultSecretId are set
	if *vaultRoleId == "" || *vaultSecretId == "" {
		log.Info("no api token configured, create and delete endpoints are disabled")
		return nil
	}
	if vaultSecret.Props == nil {
		log.Error("vault configured without --vault.secret, create and delete endpoints are disabled")
		return nil
	}

	vault, err := sa_vault.NewVaultAppRoleClient(
		ctx,
		sa_vault.Parameters{
			Address:         *vaultAddr,
			ApproleRoleID:   *vaultRoleId,
			ApproleSecretID: *vaultSecretId,
		},
	)
	if err != nil {
		log.Error("failed initializing vault client", zap.Error(err),
			zap.String("vault_address", *vaultAddr),
			zap.String("vault_role_id", *vaultRoleId))
		return nil
	}

	// start go routine to continuously renew vault token
	wg.Add(1)
	go vault.RenewToken(ctx, stop, wg)

	return common.NewVaultTokenStore(vault, vaultSecret.Props)
}

func serve() {
	var wg sync.WaitGroup
	ctx := context.Background()
	stopRenew := make(chan struct{})

	log.Info("starting "+app, zap.Stringer("build", buildinfo.Info))

	all, ready := launchSessions(config.GetConfig().Sessions)
	log.Info("hpacucli sessions launched", zap.Int("requested", len(all)), zap.Int("ready", len(ready)))

	api := &handlers.API{
		Client: hpacucli.NewCli(all[0]),
		Tokens: newTokenStore(ctx, &wg, stopRenew),
	}

	scrapeConfig := &handlers.ScrapeConfig{
		Clients:             ready,
		LogicalDriveDetails: config.GetConfig().LogicalDriveDetails,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(buildinfo.Info)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /scrape", handlers.ScrapeHandler(scrapeConfig))

	api.Register(mux)

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, indexAppData{
			Date:     buildinfo.Info.Date,
			Revision: buildinfo.Info.GitRevision,
			Version:  buildinfo.Info.GitVersion,
			Sessions: len(ready),
			Writable: api.Tokens.Configured(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(mux))

	srv := &http.Server{
		Addr:              ":" + *exporterPort,
		Handler:           wrappedmux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+*exporterPort)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started " + app + " service")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}

		for i, sess := range all {
			if err := sess.Close(); err != nil {
				log.Error("unable to close hpacucli session", zap.Int("session", i), zap.Error(err))
			}
		}

		close(stopRenew)
	}()

	wg.Wait()
}
