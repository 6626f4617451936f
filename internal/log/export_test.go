package log

var SetupLoggerTo = setupLogger
