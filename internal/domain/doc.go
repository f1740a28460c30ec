// Package domain contains the core review entities of the application:
// question records, their source tags and the batch request/response pair
// exchanged with question sources. It is independent of any storage or
// delivery mechanism.
package domain
