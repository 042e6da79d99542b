/*
Copyright 2024 The Mayastor Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tele

import (
	"github.com/go-logr/logr"
)

// compositeSink fans a single log record out to every wrapped sink, so a
// record can reach both the ambient controller-runtime logger and the
// active trace span at once.
type compositeSink struct {
	sinks []logr.LogSink
}

func (c *compositeSink) Init(info logr.RuntimeInfo) {
	for _, s := range c.sinks {
		s.Init(info)
	}
}

func (c *compositeSink) Enabled(level int) bool {
	for _, s := range c.sinks {
		if s.Enabled(level) {
			return true
		}
	}
	return false
}

func (c *compositeSink) Info(level int, msg string, keysAndValues ...interface{}) {
	for _, s := range c.sinks {
		s.Info(level, msg, keysAndValues...)
	}
}

func (c *compositeSink) Error(err error, msg string, keysAndValues ...interface{}) {
	for _, s := range c.sinks {
		s.Error(err, msg, keysAndValues...)
	}
}

func (c *compositeSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	sinks := make([]logr.LogSink, len(c.sinks))
	for i, s := range c.sinks {
		sinks[i] = s.WithValues(keysAndValues...)
	}
	return &compositeSink{sinks: sinks}
}

func (c *compositeSink) WithName(name string) logr.LogSink {
	sinks := make([]logr.LogSink, len(c.sinks))
	for i, s := range c.sinks {
		sinks[i] = s.WithName(name)
	}
	return &compositeSink{sinks: sinks}
}
