// Package manifest extracts the chapter catalog embedded in a catalogue
// site's episodes.js script.
//
// The script declares one JavaScript array per chapter:
//
//	var eps1 = [
//	    'https://cdn.example.com/1/1.jpg',
//	    'https://cdn.example.com/1/2.jpg',
//	];
//	var eps2= ['https://cdn.example.com/2/1.jpg'];
//
// The format is not JSON and is not consistently formatted, so the Parser
// uses a small tokenizer rather than a single regular expression. Malformed
// declarations are reported as *ParseError and skipped; the remaining
// declarations are still returned.
//
// # Basic Usage
//
//	catalog, errs := manifest.Parse(script)
//	for _, err := range errs {
//	    log.Println(err)
//	}
//	for _, entry := range catalog {
//	    fmt.Printf("chapter %s: %d pages\n", entry.ID, len(entry.URLs))
//	}
package manifest
