// Package services contains application services for the CodeForge client.
//
// Each service is a small interface over session.Requester (the
// authenticated request pipeline) with a private implementation and a New
// constructor. Services validate caller input, call the backend and hand
// judge responses to the normalize package.
package services
