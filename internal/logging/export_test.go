package logging

var NewFallback = newFallback
