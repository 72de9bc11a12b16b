/*
Package loader builds a tag store from a directory of images and sidecars.

Load lists the directory once, keeps files whose extension is selected,
sorts them in natural order and reads each "<base>.txt" sidecar with a
bounded worker pool:

	res, err := loader.Load(ctx, "/data/photos", loader.Options{
		Extensions:      mediatypes.ParseExtensions("png,jpg"),
		ProbeDimensions: true,
	})

A sidecar that is missing means the image has no tags. One that exists but
cannot be read is logged, counted in Result.SidecarErrors and also treated as
no tags. Only a directory that cannot be listed returns an error.

With ProbeDimensions set, image headers are decoded for PNG, JPEG, GIF, BMP,
TIFF and WebP files. Probe failures are logged at debug level and skipped.
*/
package loader
