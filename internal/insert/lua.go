package insert

import "github.com/redis/go-redis/v9"

// nullSentinel stands in for an explicit SQL-style null in the flat ARGV
// array the Lua script receives (Redis scripts only pass strings).
const nullSentinel = "\x00relcore:null\x00"

// insertScript performs the FD check and both write phases as one atomic
// server-side step.
//
// KEYS and ARGV are laid out as two parallel, per-field vectors plus a
// fixed header:
//
//	KEYS[1]              table index key (the set of live PK identifiers)
//	KEYS[2 .. 1+n]       one cell key per table field, supplied or not
//	KEYS[2+n .. ]        FD-index keys, grouped per field in field order
//
//	ARGV[1]              the record's PK identifier
//	ARGV[2]              n, the number of table fields
//	ARGV[3 .. 2+n]       one value per field, parallel to the cell keys
//	ARGV[3+n .. 2+2n]    the FD-index-key count for that field
var insertScript = redis.NewScript(`
local pkIndexKey = KEYS[1]
local pkID = ARGV[1]
local n = tonumber(ARGV[2])
local NULL = ARGV[#ARGV]

local fdCursor = 0
for i = 1, n do
  local value = ARGV[2 + i]
  local fdCount = tonumber(ARGV[2 + n + i])
  for j = 1, fdCount do
    fdCursor = fdCursor + 1
    local idxKey = KEYS[1 + n + fdCursor]
    local members = redis.call('SMEMBERS', idxKey)
    for _, existingCellKey in ipairs(members) do
      local existing = redis.call('GET', existingCellKey)
      local existingIsNull = (existing == false)
      local valueIsNull = (value == NULL)
      if existingIsNull ~= valueIsNull then
        return 0
      end
      if (not existingIsNull) and existing ~= value then
        return 0
      end
    end
  end
end

fdCursor = 0
for i = 1, n do
  local cellKey = KEYS[1 + i]
  local value = ARGV[2 + i]
  if value ~= NULL then
    redis.call('SET', cellKey, value)
  end
  local fdCount = tonumber(ARGV[2 + n + i])
  for j = 1, fdCount do
    fdCursor = fdCursor + 1
    local idxKey = KEYS[1 + n + fdCursor]
    redis.call('SADD', idxKey, cellKey)
  end
end

redis.call('SADD', pkIndexKey, pkID)
return 1
`)
