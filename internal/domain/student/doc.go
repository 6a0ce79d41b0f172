// Package student содержит профиль студента университета.
//
// Профиль (Profile) заполняется со страницы "hồ sơ" портала во время
// синхронизации: ФИО, пол, дата рождения, класс, факультет, специальность,
// система обучения. Школьная почта выводится из МССВ.
//
// Специальность из профиля используется для выбора учебного плана, когда
// вызывающая сторона не указала его явно.
package student
