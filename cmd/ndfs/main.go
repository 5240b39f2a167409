package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cortexfs/ndfs/internal/logger"
	"github.com/cortexfs/ndfs/internal/rpc"
	"github.com/cortexfs/ndfs/pkg/config"
	"github.com/cortexfs/ndfs/pkg/ndfs"
)

const usageText = `Usage: ndfs [flags] <command> [args]

Commands:
  ls <dir>                  list a directory
  stat <path>               print file metadata
  mkdir <dir>               create a directory (with parents)
  rm [-r] <path>            remove a file or directory
  mv <src> <dst>            rename a file or directory
  chmod <octal> <path>      change permission bits
  chown <owner>[:group] <path>  change owner and group
  touch <path>              set modification and access times to now
  pwd                       print the working directory
  repl                      interactive session (adds cd)
  df                        print filesystem statistics
  blocksize [path]          print the default or per-path block size

Flags:
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	uri := flag.String("uri", "hdfs:///", "Filesystem URI (hdfs://[user@]host[:port]/)")
	port := flag.Int("port", 0, "Name node port override (0 uses the URI or default)")
	logLevel := flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndfs: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)

	ctx := context.Background()
	client, err := connect(ctx, cfg, *uri, *port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndfs: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(ctx, client, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ndfs: %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

// connect opens the session with transport tuning and optional metrics
// taken from the configuration.
func connect(ctx context.Context, cfg *config.Config, uri string, port int) (*ndfs.Client, error) {
	dialOpts := []rpc.DialOption{
		rpc.WithDialTimeout(cfg.Transport.DialTimeout),
		rpc.WithCallTimeout(cfg.Transport.CallTimeout),
	}
	if cfg.Metrics.Enabled {
		dialOpts = append(dialOpts, rpc.WithMetrics(rpc.NewMetrics(prometheus.DefaultRegisterer)))
	}
	dialer := func(addr string) (rpc.Messenger, error) {
		return rpc.Dial(addr, dialOpts...)
	}

	return ndfs.Connect(ctx, uri, port, cfg, ndfs.WithDialer(dialer))
}

func run(ctx context.Context, client *ndfs.Client, command string, args []string) error {
	switch command {
	case "ls":
		return cmdLs(ctx, client, args)
	case "stat":
		return cmdStat(ctx, client, args)
	case "mkdir":
		return cmdMkdir(ctx, client, args)
	case "rm":
		return cmdRm(ctx, client, args)
	case "mv":
		return cmdMv(ctx, client, args)
	case "chmod":
		return cmdChmod(ctx, client, args)
	case "chown":
		return cmdChown(ctx, client, args)
	case "touch":
		return cmdTouch(ctx, client, args)
	case "pwd":
		fmt.Println(client.WorkingDirectory())
		return nil
	case "df":
		return cmdDf(ctx, client)
	case "blocksize":
		return cmdBlocksize(ctx, client, args)
	case "repl":
		return repl(ctx, client)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// repl runs commands from stdin against the live session. It adds cd, which
// only makes sense when the session outlives a single command.
func repl(ctx context.Context, client *ndfs.Client) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", client.WorkingDirectory())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "cd":
			if len(fields) != 2 {
				err = fmt.Errorf("expected exactly one path argument")
				break
			}
			err = client.SetWorkingDirectory(fields[1])
		case "repl":
			err = fmt.Errorf("already in a session")
		default:
			err = run(ctx, client, fields[0], fields[1:])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fields[0], err)
		}
	}
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one path argument")
	}
	return args[0], nil
}

func cmdLs(ctx context.Context, client *ndfs.Client, args []string) error {
	// No argument lists the working directory.
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}

	entries, err := client.ListDirectory(ctx, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		printInfo(entry)
	}
	return nil
}

func cmdStat(ctx context.Context, client *ndfs.Client, args []string) error {
	path, err := oneArg(args)
	if err != nil {
		return err
	}

	info, err := client.GetFileInfo(ctx, path)
	if err != nil {
		return err
	}
	printInfo(info)
	fmt.Printf("  block size %d, replication %d, atime %s\n",
		info.BlockSize, info.Replication,
		time.Unix(info.AccessTime, 0).UTC().Format(time.RFC3339))
	return nil
}

func printInfo(info *ndfs.FileInfo) {
	kind := "-"
	if info.Kind == ndfs.KindDirectory {
		kind = "d"
	}
	fmt.Printf("%s%04o %-8s %-8s %12d %s %s\n",
		kind, info.Permission, info.Owner, info.Group, info.Size,
		time.Unix(info.ModTime, 0).UTC().Format("2006-01-02 15:04"),
		info.Name)
}

func cmdMkdir(ctx context.Context, client *ndfs.Client, args []string) error {
	path, err := oneArg(args)
	if err != nil {
		return err
	}
	return client.Mkdir(ctx, path)
}

func cmdRm(ctx context.Context, client *ndfs.Client, args []string) error {
	recursive := false
	if len(args) > 0 && args[0] == "-r" {
		recursive = true
		args = args[1:]
	}
	path, err := oneArg(args)
	if err != nil {
		return err
	}
	return client.Delete(ctx, path, recursive)
}

func cmdMv(ctx context.Context, client *ndfs.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected source and destination arguments")
	}
	return client.Rename(ctx, args[0], args[1])
}

func cmdChmod(ctx context.Context, client *ndfs.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected mode and path arguments")
	}
	perm, err := ndfs.ParsePermission(args[0])
	if err != nil {
		return err
	}
	return client.SetPermission(ctx, args[1], perm)
}

func cmdChown(ctx context.Context, client *ndfs.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected owner[:group] and path arguments")
	}
	owner := args[0]
	group := ""
	for i := 0; i < len(owner); i++ {
		if owner[i] == ':' {
			group = owner[i+1:]
			owner = owner[:i]
			break
		}
	}
	return client.SetOwner(ctx, args[1], owner, group)
}

func cmdTouch(ctx context.Context, client *ndfs.Client, args []string) error {
	path, err := oneArg(args)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	return client.SetTimes(ctx, path, now, now)
}

func cmdDf(ctx context.Context, client *ndfs.Client) error {
	stats, err := client.StatFS(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("capacity  %d\n", stats.Capacity)
	fmt.Printf("used      %d\n", stats.Used)
	fmt.Printf("remaining %d\n", stats.Remaining)
	if stats.UnderReplicated > 0 || stats.CorruptBlocks > 0 || stats.MissingBlocks > 0 {
		fmt.Printf("under-replicated %d, corrupt %d, missing %d\n",
			stats.UnderReplicated, stats.CorruptBlocks, stats.MissingBlocks)
	}
	return nil
}

func cmdBlocksize(ctx context.Context, client *ndfs.Client, args []string) error {
	if len(args) == 0 {
		fmt.Println(strconv.FormatUint(client.GetDefaultBlockSize(), 10))
		return nil
	}
	size, err := client.GetDefaultBlockSizeAtPath(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(strconv.FormatUint(size, 10))
	return nil
}
