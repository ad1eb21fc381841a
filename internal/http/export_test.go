package http

var Reportable = reportable
