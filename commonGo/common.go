package commonGo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
	"github.com/robfig/cron/v3"
)

var log = logger.GetOrCreate("commonGo")

// AttachFileLogger attaches, if required, a log file
func AttachFileLogger(
	log logger.Logger,
	defaultLogsPath string,
	logFilePrefix string,
	saveLogFile bool,
	workingDir string) (FileLoggingHandler, error) {
	var err error
	var logFile FileLoggingHandler
	if saveLogFile {
		argsFileLogging := file.ArgsFileLogging{
			WorkingDir:      workingDir,
			DefaultLogsPath: defaultLogsPath,
			LogFilePrefix:   logFilePrefix,
		}
		logFile, err = file.NewFileLogging(argsFileLogging)
		if err != nil {
			return nil, fmt.Errorf("%w creating a log file", err)
		}
	}

	err = logger.SetDisplayByteSlice(logger.ToHex)
	log.LogIfError(err)

	return logFile, nil
}

// ReadEnvFile will read the file contents in the provided map. Variables already present in the
// process environment take precedence over the file, and a missing file is tolerated as long as
// every required key is set.
func ReadEnvFile(envFile string, m map[string]string) error {
	err := godotenv.Load(envFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for k := range m {
		val := os.Getenv(k)
		if len(val) == 0 {
			return fmt.Errorf("%s is not set in the .env file", k)
		}

		m[k] = val
	}

	return nil
}

// CronJobStarter starts a scheduler that calls the provided handler on every activation of the cron
// expression, evaluated in UTC. If callOnStart is set, the handler is also called once right away.
// The scheduler stops when the context is done; the returned channel is closed after the running
// handler, if any, returned.
func CronJobStarter(
	ctx context.Context,
	handler func(ctx context.Context),
	schedule string,
	callOnStart bool,
) (<-chan struct{}, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(schedule, func() {
		handler(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Debug("cron job started", "schedule", schedule, "next", c.Entries()[0].Next)

	done := make(chan struct{})
	go func() {
		if callOnStart {
			handler(ctx)
		}

		<-ctx.Done()
		<-c.Stop().Done()
		close(done)
	}()

	return done, nil
}
