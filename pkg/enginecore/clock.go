// Copyright 2025 Certen Protocol
package enginecore

import "time"

func nowUnix() int64 { return time.Now().Unix() }
