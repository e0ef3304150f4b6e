// Package file stores uploaded files, such as user avatars, on the local
// filesystem or in Amazon S3 (or an S3-compatible service).
//
// Both backends implement Storage. New picks one from Config:
//
//	store, err := file.New(ctx, cfg)
//	f, err := file.SaveImage(ctx, store, fh, 5<<20)
//	if errors.Is(err, file.ErrNotImage) { ... }
//	user.Avatar = f.URL
//
// Object keys are random, so a client never controls where its upload lands.
// Local storage confines every key to its base directory.
package file
