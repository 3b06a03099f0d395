// Package logging configures the process-wide logrus logger shared by the
// pageutil packages.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Setup points the standard logrus logger at w. Debug enables the
// diagnostic lines emitted by the catalog and the pending registry.
func Setup(w io.Writer, debug bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// For returns a logger tagged with the package it is used from.
func For(pkg string) *logrus.Entry {
	return logrus.WithField("pkg", pkg)
}
