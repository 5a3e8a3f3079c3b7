// Copyright 2019-2020, Loomstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loom

import (
	"context"
	"fmt"

	"github.com/golang/glog"
)

// Log is the diagnostic stream for a deployment. Messages flow to the engine
// when one is connected and to the process log otherwise.
type Log interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logState struct {
	engine Engine
	ctx    context.Context
}

func (l *logState) send(sev LogSeverity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.engine != nil {
		if err := l.engine.Log(l.ctx, &LogRequest{Severity: sev, Message: msg}); err == nil {
			return
		}
	}
	switch sev {
	case LogDebug:
		glog.V(3).Info(msg)
	case LogInfo:
		glog.Info(msg)
	case LogWarning:
		glog.Warning(msg)
	default:
		glog.Error(msg)
	}
}

func (l *logState) Debugf(format string, args ...interface{}) {
	l.send(LogDebug, format, args...)
}

func (l *logState) Infof(format string, args ...interface{}) {
	l.send(LogInfo, format, args...)
}

func (l *logState) Warningf(format string, args ...interface{}) {
	l.send(LogWarning, format, args...)
}

func (l *logState) Errorf(format string, args ...interface{}) {
	l.send(LogError, format, args...)
}
