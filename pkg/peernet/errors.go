package peernet

import "errors"

var errPeerUnreachable = errors.New("peernet: peer unreachable")
