// Package redis establishes the Redis connection used by the session store.
package redis
