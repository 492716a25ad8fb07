// Package notifier announces newly extracted events.
//
// DryRunNotifier writes the announcements to a writer; TwitterNotifier posts
// them through the Twitter v1.1 API with OAuth 1.0a user credentials.
package notifier
