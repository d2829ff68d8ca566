// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deptofdefense/lsdirs/pkg/fs"
	"github.com/deptofdefense/lsdirs/pkg/lfs"
	"github.com/deptofdefense/lsdirs/pkg/lister"
	"github.com/deptofdefense/lsdirs/pkg/log"
	"github.com/deptofdefense/lsdirs/pkg/s3fs"
)

const (
	LsdirsVersion = "1.0.0"
)

const (
	flagPath = "path"
	//
	flagFiles             = "files"
	flagDirectoryTemplate = "directory-template"
	flagFileTemplate      = "file-template"
	//
	flagLogPath  = "log"
	flagLogPerm  = "log-perm"
	flagLogLevel = "log-level"
	//
	flagDryRun = "dry-run"
	//
	flagAWSPartition          = "aws-partition"
	flagAWSDefaultRegion      = "aws-default-region"
	flagAWSRegion             = "aws-region"
	flagAWSAccessKeyID        = "aws-access-key-id"
	flagAWSSecretAccessKey    = "aws-secret-access-key"
	flagAWSSessionToken       = "aws-session-token"
	flagAWSInsecureSkipVerify = "aws-insecure-skip-verify"
	flagAWSS3Endpoint         = "aws-s3-endpoint"
	flagAWSS3UsePathStyle     = "aws-s3-use-path-style"
	flagAWSS3PageSize         = "aws-s3-page-size"
)

var (
	// awsFlags are also read from the standard AWS environment variables.
	awsFlags = []string{
		flagAWSDefaultRegion,
		flagAWSRegion,
		flagAWSAccessKeyID,
		flagAWSSecretAccessKey,
		flagAWSSessionToken,
	}
)

func initListFlags(flag *pflag.FlagSet) {
	flag.StringP(flagPath, "p", ".", "path to the directory to list, either a local path or s3://bucket/prefix.  Overridden by the positional argument.")
	flag.Bool(flagFiles, false, "also print entries that are not directories")
	flag.String(flagDirectoryTemplate, "", "template for directory lines.  Defaults to \"Directory: {{ .Name }}\".")
	flag.String(flagFileTemplate, "", "template for file lines.  Defaults to \"File: {{ .Name }}\".")
	flag.StringP(flagLogPath, "l", "-", "path to the log output.  Defaults to stderr.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	flag.String(flagLogLevel, "warn", "minimum log level, one of: debug, info, warn, error")
	flag.Bool(flagDryRun, false, "exit after checking configuration")
	initAWSFlags(flag)
}

func initAWSFlags(flag *pflag.FlagSet) {
	flag.String(flagAWSPartition, "", "AWS Partition")
	flag.String(flagAWSDefaultRegion, "", "AWS Default Region")
	flag.String(flagAWSRegion, "", "AWS Region (overrides default region)")
	flag.String(flagAWSAccessKeyID, "", "AWS Access Key ID")
	flag.String(flagAWSSecretAccessKey, "", "AWS Secret Access Key")
	flag.String(flagAWSSessionToken, "", "AWS Session Token")
	flag.Bool(flagAWSInsecureSkipVerify, false, "Skip verification of AWS TLS certificate")
	flag.String(flagAWSS3Endpoint, "", "AWS S3 Endpoint URL")
	flag.Bool(flagAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing)")
	flag.Int(flagAWSS3PageSize, 0, "maximum keys requested per S3 list call, between 1 and 1000.  Defaults to the service default.")
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvPrefix("lsdirs")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	for _, name := range awsFlags {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		envName := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if err := v.BindEnv(name, "LSDIRS_"+envName, envName); err != nil {
			return v, fmt.Errorf("error binding environment variable %q: %w", envName, err)
		}
	}
	return v, nil
}

func initS3Client(v *viper.Viper) *s3.Client {
	accessKeyID := v.GetString(flagAWSAccessKeyID)
	secretAccessKey := v.GetString(flagAWSSecretAccessKey)
	sessionToken := v.GetString(flagAWSSessionToken)
	usePathStyle := v.GetBool(flagAWSS3UsePathStyle)

	region := v.GetString(flagAWSRegion)
	if len(region) == 0 {
		if defaultRegion := v.GetString(flagAWSDefaultRegion); len(defaultRegion) > 0 {
			region = defaultRegion
		}
	}

	config := aws.Config{
		RetryMaxAttempts: 3,
		Region:           region,
	}

	partition := v.GetString(flagAWSPartition)
	if len(partition) == 0 {
		partition = "aws"
	}

	if e := v.GetString(flagAWSS3Endpoint); len(e) > 0 {
		config.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(func(service string, region string, options ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				endpoint := aws.Endpoint{
					PartitionID:   partition,
					URL:           e,
					SigningRegion: region,
				}
				return endpoint, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
	}

	if len(accessKeyID) > 0 && len(secretAccessKey) > 0 {
		config.Credentials = credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			sessionToken)
	}

	if v.GetBool(flagAWSInsecureSkipVerify) {
		config.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
}

func checkConfig(v *viper.Viper, p string) error {
	if len(p) == 0 {
		return fmt.Errorf("path is missing")
	}
	if strings.HasPrefix(p, "s3://") {
		if _, _, err := s3fs.ParsePath(p); err != nil {
			return fmt.Errorf("invalid s3 path: %w", err)
		}
		pageSize := v.GetInt(flagAWSS3PageSize)
		if pageSize < 0 || pageSize > 1000 {
			return fmt.Errorf("invalid s3 page size %d, must be between 0 and 1000", pageSize)
		}
	}
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	if err := log.NewDiscardLogger().SetLevel(v.GetString(flagLogLevel)); err != nil {
		return err
	}
	return nil
}

func newTraceID() string {
	traceID, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return traceID.String()
}

// initLogger returns the logger and a function that closes the log file, if one was opened.
func initLogger(stderr io.Writer, path string, perm string, level string) (*log.SimpleLogger, func() error, error) {

	var logger *log.SimpleLogger
	closeLog := func() error { return nil }

	if path == "-" {
		logger = log.NewSimpleLogger(stderr)
	} else {
		fileMode := os.FileMode(0600)

		if len(perm) > 0 {
			fm, err := strconv.ParseUint(perm, 8, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
			}
			fileMode = os.FileMode(fm)
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening log file %q: %w", path, err)
		}

		logger = log.NewSimpleLogger(f)
		closeLog = f.Close
	}

	if err := logger.SetLevel(level); err != nil {
		_ = closeLog()
		return nil, nil, err
	}

	return logger.With(map[string]interface{}{
		"lsdirs_trace_id": newTraceID(),
	}), closeLog, nil
}

// initFileSystem returns the file system for the path and the name of the directory within it.
func initFileSystem(v *viper.Viper, p string) (fs.FileSystem, string, error) {
	if strings.HasPrefix(p, "s3://") {
		bucket, prefix, err := s3fs.ParsePath(p)
		if err != nil {
			return nil, "", err
		}
		return s3fs.NewS3FileSystem(bucket, prefix, initS3Client(v), int32(v.GetInt(flagAWSS3PageSize))), "/", nil
	}
	return lfs.NewLocalFileSystem(), p, nil
}

func runList(ctx context.Context, cmd *cobra.Command, args []string) error {
	v, err := initViper(cmd)
	if err != nil {
		return fmt.Errorf("error initializing viper: %w", err)
	}

	p := v.GetString(flagPath)
	if len(args) == 1 {
		p = args[0]
	}

	if errConfig := checkConfig(v, p); errConfig != nil {
		return errConfig
	}

	logger, closeLog, err := initLogger(cmd.ErrOrStderr(), v.GetString(flagLogPath), v.GetString(flagLogPerm), v.GetString(flagLogLevel))
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	fileSystem, name, err := initFileSystem(v, p)
	if err != nil {
		return fmt.Errorf("error initializing file system: %w", err)
	}

	l, err := lister.NewLister(fileSystem, cmd.OutOrStdout(), logger, &lister.Config{
		IncludeFiles:      v.GetBool(flagFiles),
		DirectoryTemplate: v.GetString(flagDirectoryTemplate),
		FileTemplate:      v.GetString(flagFileTemplate),
	})
	if err != nil {
		return fmt.Errorf("error initializing lister: %w", err)
	}

	// If dry run, then return before listing.
	if v.GetBool(flagDryRun) {
		_ = logger.Log("Configuration is valid", map[string]interface{}{
			"path": p,
		})
		return nil
	}

	return l.ListDirectories(ctx, name)
}

func newRootCommand() *cobra.Command {

	rootCommand := &cobra.Command{
		Use:                   `lsdirs [flags]`,
		DisableFlagsInUseLine: true,
		Short:                 "lsdirs lists the subdirectories of a directory.",
	}

	listCommand := &cobra.Command{
		Use:                   `list [path] [flags]`,
		DisableFlagsInUseLine: true,
		Short:                 "print the immediate subdirectories of a directory",
		Example: `list /var/www
list --path /var/www --files
list s3://bucket/prefix --aws-region us-east-1`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, args)
		},
	}
	initListFlags(listCommand.Flags())

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), LsdirsVersion)
			return err
		},
	}

	rootCommand.AddCommand(listCommand, versionCommand)

	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "lsdirs: "+err.Error())
		_, _ = fmt.Fprintln(os.Stderr, "Try lsdirs --help for more information.")
		os.Exit(1)
	}
}
