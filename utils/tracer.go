package utils

import (
	"github.com/juqihq/feedcore/utils/dotenv"
	"github.com/juqihq/feedcore/utils/flag"
	Logger "github.com/juqihq/feedcore/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// InitTracer starts the Datadog tracer. Call once from main.
func InitTracer() {
	env := "development"
	if dotenv.IsProdEnv() {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(flag.ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.WithFields(
		logrus.Fields{"service": flag.ServiceName},
	).Info("tracer initialized")
}

// CloseTracer stops the tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
