// Package github fetches the markdown files of a GitHub repository into a
// local directory so they can be read as a document source.
//
// Two strategies are provided:
//
//   - CloneFetcher shells out to git for a shallow clone into a temporary
//     directory under the output directory, then removes it.
//
//   - APIFetcher walks the default branch through the recursive Trees API and
//     downloads matching blobs, so no git binary is required.
//
// Both copy every .md, .mdx and .markdown file into the output directory with
// a flattened name in which path separators are replaced by underscores:
//
//	docs/guide/intro.md -> docs_guide_intro.md
//
// # Rate Limiting
//
// The API strategy throttles requests with a token bucket (about 1.2 requests
// per second by default) and watches the X-RateLimit-Remaining and
// X-RateLimit-Reset headers, waiting for the reset once the remaining quota
// falls under a small buffer.
package github
