package http

import (
	"github.com/frankli0324/proxyget/internal/dialer"
)

type Dialer = dialer.Dialer
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig
type ResolveConfig = dialer.ResolveConfig
