// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hoptable

import (
	"fmt"

	"github.com/aristanetworks/hoptable/glog"
	"github.com/aristanetworks/hoptable/logger"
)

// fatalLogger receives the one class of message hoptable ever logs: a fatal,
// unrecoverable condition (capacity-planner overflow). It defaults to the
// glog-backed logger.Logger implementation also used by the rest of this
// module's ancestry; callers embedding hoptable in a process with its own
// logging story can override it with SetLogger.
var fatalLogger logger.Logger = &glog.Glog{}

// SetLogger replaces the logger used for hoptable's fatal-path messages.
// There is no per-operation logging: the container is synchronous and
// single-threaded, and logging on the hot path would contradict the "no
// operation suspends, no background work" resource model.
func SetLogger(l logger.Logger) {
	fatalLogger = l
}

func fatalf(format string, args ...interface{}) {
	fatalLogger.Fatalf(format, args...)
	// glog.Fatalf calls os.Exit; the panic below only matters for loggers
	// that don't, and for tests that inject one that doesn't exit so the
	// overflow is still unrepresentable to the caller.
	panic(fmt.Sprintf(format, args...))
}
