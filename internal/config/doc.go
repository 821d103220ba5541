// Package config loads the client configuration from ~/.metanet.
//
// Layout of the data directory:
//
//	~/.metanet/
//	├── config.json   # this configuration
//	├── metanet.log   # structured log
//	├── vault.json    # local host account, grants and sealed settings
//	└── cache.db      # resolved metadata (sqlite backend)
//
// String values in config.json may reference environment variables with
// $VAR or ${VAR}. Every key can also be overridden by a METANET_*
// environment variable, for example METANET_CACHE_BACKEND=redis.
//
//	manager := config.NewManager(config.DefaultDir())
//	if err := manager.Load(); err != nil {
//		log.Fatal(err)
//	}
//	cfg := manager.Get()
package config
