package deleteengine

import "github.com/redis/go-redis/v9"

// deleteScript removes a record's cells, its FD-index memberships, and its
// table-index membership as one atomic step. The determinant identifiers
// were already resolved in Go (they depend on the record's stored values,
// which the script would otherwise have to re-read); the script just
// receives the resulting FD-index keys to clean up.
//
//	KEYS[1]           table index key
//	KEYS[2 .. 1+n]    one cell key per table field, in field order
//	KEYS[2+n .. ]     FD-index keys to clean, grouped per field
//
//	ARGV[1]           the record's PK identifier
//	ARGV[2]           n, the number of table fields
//	ARGV[3 .. 2+n]    the FD-index-key count for that field
var deleteScript = redis.NewScript(`
local pkIndexKey = KEYS[1]
local n = tonumber(ARGV[2])

local fdCursor = 0
for i = 1, n do
  local cellKey = KEYS[1 + i]
  local fdCount = tonumber(ARGV[2 + i])
  for j = 1, fdCount do
    fdCursor = fdCursor + 1
    local idxKey = KEYS[1 + n + fdCursor]
    redis.call('SREM', idxKey, cellKey)
  end
  redis.call('DEL', cellKey)
end

redis.call('SREM', pkIndexKey, ARGV[1])
return 1
`)
