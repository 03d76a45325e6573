// Package file fetches the robots database document from local disk or S3.
//
// Both LocalSource and S3Source implement Source. Open takes the version the
// caller already holds and returns ErrNotModified when it is still current:
// local files compare modification time and size, S3 objects use a
// conditional GET with the last ETag. Loader turns a Source into a
// robots.LoaderFunc for robots.Store:
//
//	src, err := file.NewSource(ctx, "s3://robots-db/robots.json", cfg.S3)
//	if err != nil {
//		return err
//	}
//	load := file.Loader(src, log)
//	if err := store.Reload(ctx, load); err != nil {
//		return err
//	}
//	go store.Watch(ctx, time.Minute, load)
//
// S3 errors are mapped to sentinel errors (ErrFileNotFound, ErrAccessDenied,
// ErrBucketNotFound, ...) so callers can use errors.Is.
package file
