package redis

import (
	"fmt"

	"github.com/arcadelab/gamehub/internal/model"
)

const keyPrefix = "gamehub"

func userKey(role model.Role, username string) string {
	return fmt.Sprintf("%s:user:%s:%s", keyPrefix, role, username)
}

func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

func gameIndexKey() string {
	return keyPrefix + ":games"
}

func snapshotKey() string {
	return keyPrefix + ":snapshot"
}
