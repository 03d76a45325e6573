// Package redis connects to Redis and exposes it as a shared response cache
// for the remote lookup client.
//
// The package wraps the go-redis client and adds:
//
//   - Connect, which retries the connection using the supplied configuration.
//   - Cache, a namespaced key/value store with a TTL that satisfies
//     accesswatch.Cache.
//   - Healthcheck, for the HTTP API health endpoint.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	remote, err := accesswatch.NewClient(apiKey,
//		accesswatch.WithCache(redis.NewCache(client, cfg)),
//	)
//
// Config fields are populated from environment variables via
// github.com/caarlos0/env (REDIS_URL, REDIS_CACHE_TTL, ...).
package redis
