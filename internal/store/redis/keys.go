package redis

import "fmt"

const (
	// KeyPrefixBookmark is the prefix for bookmark record keys
	KeyPrefixBookmark = "marks:bookmark:"
	// keyUserBookmarks is the per-user ZSET of bookmark ids scored by creation time
	keyUserBookmarks = "marks:user:%s:bookmarks"
	// channelEvents is the per-user pub/sub channel carrying change messages
	channelEvents = "marks:events:%s"
)

// BookmarkKey returns the Redis key holding one bookmark record
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// UserBookmarksKey returns the ordered index of a user's bookmarks
func UserBookmarksKey(userID string) string {
	return fmt.Sprintf(keyUserBookmarks, userID)
}

// EventsChannel returns the change-feed channel of a user
func EventsChannel(userID string) string {
	return fmt.Sprintf(channelEvents, userID)
}

// ExtractBookmarkID extracts the bookmark id from a record key
func ExtractBookmarkID(key string) (string, error) {
	if len(key) <= len(KeyPrefixBookmark) || key[:len(KeyPrefixBookmark)] != KeyPrefixBookmark {
		return "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	return key[len(KeyPrefixBookmark):], nil
}
