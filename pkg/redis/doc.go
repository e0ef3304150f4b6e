// Package redis connects to Redis through github.com/redis/go-redis/v9.
//
// Redis is optional for the API: when REDIS_URL is set the rate limiter keeps
// its counters there so that every replica shares one budget per client.
package redis
