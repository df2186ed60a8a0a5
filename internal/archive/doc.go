// Package archive packs chapter directories into comic book archives.
//
// A work directory is laid out as
//
//	{root}/{chapter}/{page}.jpg
//
// and Pack turns every chapter directory into {root}/{prefix} - {chapter}.cbz,
// a plain zip of the pages. A chapter directory is removed only after its
// archive has been completely written and closed; a chapter whose archive
// fails is left untouched.
//
// # Basic Usage
//
//	packager := archive.NewPackager("cbz", logger)
//	report, err := packager.Pack(work.Path, work.Name)
//	if err != nil {
//	    // root could not be listed
//	}
//	for _, perr := range report.Failed {
//	    fmt.Println(perr)
//	}
package archive
