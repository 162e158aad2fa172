package auth

// CanMutate reports whether the authenticated user owns the resource.
// Update and delete of a song or playlist, and playlist membership changes,
// are allowed only for the owner.
func CanMutate(userID, ownerID int64) bool {
	return userID == ownerID
}
